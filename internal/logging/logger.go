package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

// LogLevel определяет уровни логирования
type LogLevel int32

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MaxDebugLevel максимальный уровень отладки плагина (settings.debug_level).
const MaxDebugLevel = 3

// LevelForDebug переводит уровень отладки плагина (0..3) в минимальный
// уровень вывода в консоль: 0 -> INFO, 1 -> DEBUG, 2 и выше -> TRACE.
func LevelForDebug(debugLevel int) LogLevel {
	switch {
	case debugLevel <= 0:
		return INFO
	case debugLevel == 1:
		return DEBUG
	default:
		return TRACE
	}
}

// Logger представляет логгер отдельного компонента
type Logger struct {
	component     string
	consoleLogger *log.Logger
	fileLogger    *log.Logger
	file          *os.File

	minConsoleLevel LogLevel
	minFileLevel    LogLevel
	debugLevel      atomic.Int32
}

// LogDir каталог для файлов логов компонентов.
var LogDir = "logs"

// NewLogger создаёт логгер компонента с выводом в консоль и в файл
// logs/<component>_<timestamp>.log.
func NewLogger(component string) (*Logger, error) {
	if err := os.MkdirAll(LogDir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", LogDir, err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(LogDir, fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	return &Logger{
		component:       component,
		consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
		fileLogger:      log.New(file, "", log.LstdFlags),
		file:            file,
		minConsoleLevel: INFO,
		minFileLevel:    TRACE,
	}, nil
}

// NewWriterLogger создаёт логгер без файла, пишущий в w.
// Используется в тестах и утилитах командной строки.
func NewWriterLogger(component string, w io.Writer) *Logger {
	return &Logger{
		component:       component,
		consoleLogger:   log.New(w, "", 0),
		minConsoleLevel: INFO,
		minFileLevel:    ERROR,
	}
}

// Component возвращает имя компонента
func (l *Logger) Component() string {
	return l.component
}

// SetDebugLevel устанавливает уровень отладки плагина (0..3).
// Значения вне диапазона обрезаются.
func (l *Logger) SetDebugLevel(level int) {
	if l == nil {
		return
	}
	if level < 0 {
		level = 0
	}
	if level > MaxDebugLevel {
		level = MaxDebugLevel
	}
	l.debugLevel.Store(int32(level))
}

// DebugLevel возвращает текущий уровень отладки
func (l *Logger) DebugLevel() int {
	if l == nil {
		return 0
	}
	return int(l.debugLevel.Load())
}

// consoleThreshold учитывает уровень отладки: он может только понизить порог.
func (l *Logger) consoleThreshold() LogLevel {
	threshold := LevelForDebug(l.DebugLevel())
	if l.minConsoleLevel < threshold {
		return l.minConsoleLevel
	}
	return threshold
}

// Enabled сообщает, попадёт ли сообщение уровня level хоть в один вывод.
func (l *Logger) Enabled(level LogLevel) bool {
	if l == nil {
		return false
	}
	if level >= l.consoleThreshold() {
		return true
	}
	return l.fileLogger != nil && level >= l.minFileLevel
}

// Close закрывает файл логов
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

// Trace логирует сообщение уровня TRACE
func (l *Logger) Trace(format string, args ...interface{}) {
	l.logMessage(TRACE, format, args...)
}

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logMessage(DEBUG, format, args...)
}

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) {
	l.logMessage(INFO, format, args...)
}

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logMessage(WARN, format, args...)
}

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) {
	l.logMessage(ERROR, format, args...)
}

// logMessage внутренняя функция для логирования
func (l *Logger) logMessage(level LogLevel, format string, args ...interface{}) {
	if l == nil {
		return
	}

	message := fmt.Sprintf("[%s] [%s] %s", level.String(), l.component, fmt.Sprintf(format, args...))

	if l.fileLogger != nil && level >= l.minFileLevel {
		l.fileLogger.Println(message)
	}
	if l.consoleLogger != nil && level >= l.consoleThreshold() {
		l.consoleLogger.Println(message)
	}
}

// Глобальный логгер процесса. Пакеты получают логгер через внедрение;
// глобальный нужен main, утилитам и разбору имён Shares.
var defaultLogger = NewWriterLogger("main", os.Stdout)

// InitDefaultLogger инициализирует глобальный логгер с выводом в файл
func InitDefaultLogger(component string) error {
	l, err := NewLogger(component)
	if err != nil {
		return err
	}
	defaultLogger = l
	return nil
}

// CloseDefaultLogger закрывает глобальный логгер
func CloseDefaultLogger() {
	if defaultLogger != nil {
		defaultLogger.Close()
	}
}

// Default возвращает глобальный логгер
func Default() *Logger {
	return defaultLogger
}

// Trace логирует через глобальный логгер
func Trace(format string, args ...interface{}) { defaultLogger.Trace(format, args...) }

// Debug логирует через глобальный логгер
func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }

// Info логирует через глобальный логгер
func Info(format string, args ...interface{}) { defaultLogger.Info(format, args...) }

// Warn логирует через глобальный логгер
func Warn(format string, args ...interface{}) { defaultLogger.Warn(format, args...) }

// Error логирует через глобальный логгер
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }
