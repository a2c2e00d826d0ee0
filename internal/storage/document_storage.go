package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/annel0/mvinventories/internal/domain"
)

// DocumentStorage хранит документ конфигурации целиком.
// Чтение и запись блокирующие, без частичных обновлений.
type DocumentStorage interface {
	// Read возвращает содержимое; пустой срез, если документа ещё нет.
	Read() ([]byte, error)
	// Write атомарно заменяет документ.
	Write(data []byte) error
	// Location возвращает описание места хранения для логов и отчётов.
	Location() string
}

// ConfigFileName имя файла конфигурации в каталоге данных плагина
const ConfigFileName = "config.yml"

// FileStorage хранит документ в файле на диске
type FileStorage struct {
	path string
}

// NewFileStorage создаёт каталог данных и пустой файл конфигурации, если их нет.
func NewFileStorage(dataDir string) (*FileStorage, error) {
	const op = "storage.new_file_storage"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, domain.StorageError(op, dataDir, fmt.Errorf("не удалось создать директорию: %w", err))
	}

	path := filepath.Join(dataDir, ConfigFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0644)
	if err != nil {
		return nil, domain.StorageError(op, path, fmt.Errorf("не удалось создать файл конфигурации: %w", err))
	}
	if err := f.Close(); err != nil {
		return nil, domain.StorageError(op, path, err)
	}

	return &FileStorage{path: path}, nil
}

// Path возвращает путь к файлу конфигурации
func (f *FileStorage) Path() string {
	return f.path
}

// Location реализует DocumentStorage
func (f *FileStorage) Location() string {
	return f.path
}

// Read читает файл целиком. Отсутствующий файл читается как пустой документ.
func (f *FileStorage) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StorageError("storage.read", f.path, err)
	}
	return data, nil
}

// Write записывает документ во временный файл и переименовывает его поверх
// исходного, чтобы при сбое не остался наполовину записанный конфиг.
func (f *FileStorage) Write(data []byte) error {
	const op = "storage.write"

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return domain.StorageError(op, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ConfigFileName+".*.tmp")
	if err != nil {
		return domain.StorageError(op, f.path, fmt.Errorf("ошибка создания временного файла: %w", err))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return domain.StorageError(op, f.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return domain.StorageError(op, f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return domain.StorageError(op, f.path, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return domain.StorageError(op, f.path, fmt.Errorf("ошибка замены файла: %w", err))
	}
	return nil
}

// MemoryStorage хранит документ в памяти.
// Используется в тестах и в режиме dry-run утилиты groupctl.
type MemoryStorage struct {
	mu     sync.RWMutex
	data   []byte
	writes int

	// FailWrites заставляет Write возвращать StorageIOError
	FailWrites bool
}

// NewMemoryStorage создаёт хранилище с начальным содержимым
func NewMemoryStorage(initial []byte) *MemoryStorage {
	ms := &MemoryStorage{}
	if initial != nil {
		ms.data = append([]byte(nil), initial...)
	}
	return ms
}

// Location реализует DocumentStorage
func (ms *MemoryStorage) Location() string {
	return "memory"
}

// Read возвращает копию содержимого
func (ms *MemoryStorage) Read() ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return append([]byte(nil), ms.data...), nil
}

// Write заменяет содержимое
func (ms *MemoryStorage) Write(data []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.FailWrites {
		return domain.StorageError("storage.write", "memory", errors.New("запись запрещена"))
	}
	ms.data = append([]byte(nil), data...)
	ms.writes++
	return nil
}

// Writes возвращает количество успешных записей
func (ms *MemoryStorage) Writes() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.writes
}
