package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/mvinventories/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRuntime_Defaults(t *testing.T) {
	t.Setenv(EnvRuntimeConfig, "")
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvMetricsAddr, "")
	t.Setenv(EnvBusCapacity, "")

	rt, err := LoadRuntime("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDataDir, rt.Host.GetDataDir())
	assert.Equal(t, DefaultBusCapacity, rt.EventBus.GetCapacity())
	assert.Equal(t, "", rt.Metrics.GetAddr())
}

func TestLoadRuntime_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.yml")
	require.NoError(t, os.WriteFile(path, []byte("host:\n  worlds: [world, nether]\neventbus:\n  capacity: 8\n"), 0644))

	t.Setenv(EnvRuntimeConfig, path)
	t.Setenv(EnvDataDir, "/srv/mvi")
	t.Setenv(EnvMetricsAddr, ":2112")
	t.Setenv(EnvBusCapacity, "128")

	rt, err := LoadRuntime("")
	require.NoError(t, err)
	assert.Equal(t, []string{"world", "nether"}, rt.Host.Worlds)
	assert.Equal(t, "/srv/mvi", rt.Host.GetDataDir(), "пустое значение файла берётся из окружения")
	assert.Equal(t, 8, rt.EventBus.GetCapacity(), "файл важнее окружения")
	assert.Equal(t, ":2112", rt.Metrics.GetAddr())
}

func TestLoadRuntime_BadEnvAndFile(t *testing.T) {
	t.Setenv(EnvBusCapacity, "много")
	assert.Equal(t, DefaultBusCapacity, (&EventBusConfig{}).GetCapacity())

	_, err := LoadRuntime(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, domain.ErrStorageIO)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("host: [1, 2\n"), 0644))
	_, err = LoadRuntime(path)
	assert.ErrorIs(t, err, domain.ErrConfigFormat)
}
