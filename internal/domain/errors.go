package domain

import (
	"errors"
	"fmt"
)

// Базовые ошибки для грубой классификации.
var (
	ErrConfigFormat = errors.New("config format error")
	ErrGroupParse   = errors.New("group parse error")
	ErrStorageIO    = errors.New("storage io error")
)

// ErrorKind категория ошибки хранилища конфигурации.
type ErrorKind string

const (
	// KindConfigFormat: форма сохранённого значения не совпадает с ожидаемой
	// (например, shares не является списком строк).
	KindConfigFormat ErrorKind = "config_format"
	// KindGroupParse: секция группы не прошла структурную проверку.
	KindGroupParse ErrorKind = "group_parse"
	// KindStorageIO: файл нельзя создать, прочитать или записать.
	KindStorageIO ErrorKind = "storage_io"
)

// OpError оборачивает исходную ошибку контекстом операции и категорией.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // путь в документе или на диске, может быть пустым
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is позволяет сравнивать OpError с базовыми ошибками через errors.Is.
func (e *OpError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrConfigFormat:
		return e.Kind == KindConfigFormat
	case ErrGroupParse:
		return e.Kind == KindGroupParse
	case ErrStorageIO:
		return e.Kind == KindStorageIO
	}
	return false
}

// IsKind проверяет категорию ошибки, не завися от конкретных пакетов.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// FormatError создаёт ConfigFormatError.
func FormatError(op, path string, format string, args ...interface{}) error {
	return &OpError{Op: op, Kind: KindConfigFormat, Path: path, Err: fmt.Errorf(format, args...)}
}

// GroupParseError оборачивает причину в GroupParseError.
func GroupParseError(op, group string, err error) error {
	return &OpError{Op: op, Kind: KindGroupParse, Path: group, Err: err}
}

// StorageError оборачивает ошибку ввода-вывода в StorageIOError.
func StorageError(op, path string, err error) error {
	return &OpError{Op: op, Kind: KindStorageIO, Path: path, Err: err}
}
