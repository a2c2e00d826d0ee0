package config

import (
	"os"
	"strconv"

	"github.com/annel0/mvinventories/internal/domain"
	"gopkg.in/yaml.v3"
)

// Переменные окружения процесса хоста
const (
	EnvRuntimeConfig = "MVI_CONFIG"
	EnvDataDir       = "MVI_DATA_DIR"
	EnvMetricsAddr   = "MVI_METRICS_ADDR"
	EnvBusCapacity   = "MVI_BUS_CAPACITY"
)

// Значения по умолчанию процесса хоста
const (
	DefaultDataDir     = "plugins/Multiverse-Inventories"
	DefaultBusCapacity = 64
)

// Runtime настройки процесса хоста, в отличие от config.yml плагина.
// Приоритет: файл -> окружение -> значение по умолчанию; флаги командной
// строки применяются поверх.
type Runtime struct {
	Host     HostConfig     `yaml:"host"`
	EventBus EventBusConfig `yaml:"eventbus"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type HostConfig struct {
	DataDir string   `yaml:"data_dir"`
	Worlds  []string `yaml:"worlds"`
}

type EventBusConfig struct {
	Capacity int `yaml:"capacity"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // пусто: HTTP-эндпоинт не поднимается
}

// GetDataDir возвращает каталог данных плагина
func (h *HostConfig) GetDataDir() string {
	return stringWithEnvFallback(h.DataDir, EnvDataDir, DefaultDataDir)
}

// GetCapacity возвращает размер буфера шины событий
func (e *EventBusConfig) GetCapacity() int {
	return intWithEnvFallback(e.Capacity, EnvBusCapacity, DefaultBusCapacity)
}

// GetAddr возвращает адрес Prometheus /metrics
func (m *MetricsConfig) GetAddr() string {
	return stringWithEnvFallback(m.Addr, EnvMetricsAddr, "")
}

func stringWithEnvFallback(value, envVar, def string) string {
	if value != "" {
		return value
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return def
}

// intWithEnvFallback: некорректное значение окружения игнорируется
func intWithEnvFallback(value int, envVar string, def int) int {
	if value > 0 {
		return value
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if n, err := strconv.Atoi(envVal); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// LoadRuntime читает YAML-файл настроек хоста.
// Если path == "", берётся MVI_CONFIG; если и он пуст, возвращаются
// пустые настройки, то есть окружение и значения по умолчанию.
func LoadRuntime(path string) (*Runtime, error) {
	if path == "" {
		path = os.Getenv(EnvRuntimeConfig)
		if path == "" {
			return &Runtime{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.StorageError("config.load_runtime", path, err)
	}

	var rt Runtime
	if err := yaml.Unmarshal(data, &rt); err != nil {
		return nil, domain.FormatError("config.load_runtime", path, "ошибка разбора: %w", err)
	}
	return &rt, nil
}
