package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/mvinventories/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_CreatesDataFolderAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plugins", "Multiverse-Inventories")

	fs, err := NewFileStorage(dir)
	require.NoError(t, err)

	info, err := os.Stat(fs.Path())
	require.NoError(t, err, "файл конфигурации должен быть создан")
	assert.Equal(t, int64(0), info.Size())
	assert.Equal(t, filepath.Join(dir, ConfigFileName), fs.Location())

	data, err := fs.Read()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileStorage_WriteReplacesWholeFile(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.Write([]byte("settings:\n  locale: en\nlong: value\n")))
	require.NoError(t, fs.Write([]byte("settings: {}\n")))

	data, err := fs.Read()
	require.NoError(t, err)
	assert.Equal(t, "settings: {}\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(fs.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "временные файлы не должны оставаться")
}

func TestFileStorage_ReadMissingFile(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.Remove(fs.Path()))

	data, err := fs.Read()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileStorage_DataDirIsFile(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewFileStorage(filepath.Join(blocker, "data"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorageIO))
}

func TestMemoryStorage(t *testing.T) {
	ms := NewMemoryStorage([]byte("a: 1\n"))

	data, err := ms.Read()
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(data))

	data[0] = 'b'
	again, _ := ms.Read()
	assert.Equal(t, "a: 1\n", string(again), "Read возвращает копию")

	require.NoError(t, ms.Write([]byte("b: 2\n")))
	assert.Equal(t, 1, ms.Writes())

	ms.FailWrites = true
	err = ms.Write([]byte("c: 3\n"))
	assert.True(t, domain.IsKind(err, domain.KindStorageIO))
	assert.Equal(t, 1, ms.Writes())
}
