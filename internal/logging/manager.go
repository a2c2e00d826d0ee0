package logging

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

// LoggerManager управляет логгерами разных компонентов плагина
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	// newLogger подменяется в тестах, чтобы не создавать файлы
	newLogger func(component string) (*Logger, error)
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// NewLoggerManager создаёт менеджер с файловыми логгерами
func NewLoggerManager() *LoggerManager {
	return &LoggerManager{
		loggers:   make(map[string]*Logger),
		newLogger: NewLogger,
	}
}

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = NewLoggerManager()
	})
	return globalManager
}

// GetLogger возвращает логгер для компонента, создавая его при необходимости
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	if logger, exists := lm.loggers[component]; exists {
		lm.mu.RUnlock()
		return logger, nil
	}
	lm.mu.RUnlock()

	lm.mu.Lock()
	defer lm.mu.Unlock()

	// Проверяем еще раз на случай race condition
	if logger, exists := lm.loggers[component]; exists {
		return logger, nil
	}

	logger, err := lm.newLogger(component)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger for %s: %w", component, err)
	}

	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер или создает fallback в stdout при ошибке
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err != nil {
		return NewWriterLogger(component, os.Stdout)
	}
	return logger
}

// SetDebugLevel применяет уровень отладки ко всем зарегистрированным логгерам
func (lm *LoggerManager) SetDebugLevel(level int) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	for _, logger := range lm.loggers {
		logger.SetDebugLevel(level)
	}
}

// CloseAll закрывает все логгеры
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var lastErr error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close logger for %s: %w", component, err)
		}
	}

	lm.loggers = make(map[string]*Logger)
	return lastErr
}

// ListComponents возвращает отсортированный список зарегистрированных компонентов
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// Удобные функции для получения логгеров
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetConfigLogger() *Logger {
	return GetComponentLogger("config")
}

func GetListenerLogger() *Logger {
	return GetComponentLogger("listener")
}
