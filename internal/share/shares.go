package share

import (
	"fmt"
	"sort"
	"strings"

	"github.com/annel0/mvinventories/internal/domain"
)

// Shares множество категорий. Нулевое значение означает пустой набор,
// привязанный к регистру процесса.
type Shares struct {
	reg     *Registry
	members map[string]Share // каноническое имя -> категория
}

// NewShares создаёт набор из перечисленных категорий
func NewShares(items ...Share) Shares {
	s := Default.Empty()
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func (s Shares) registry() *Registry {
	if s.reg == nil {
		return Default
	}
	return s.reg
}

// Len возвращает количество категорий
func (s Shares) Len() int {
	return len(s.members)
}

// Contains проверяет наличие категории
func (s Shares) Contains(item Share) bool {
	_, ok := s.members[s.canonical(item).Name]
	return ok
}

// Add добавляет категорию под её каноническим именем
func (s *Shares) Add(item Share) {
	if s.members == nil {
		s.members = make(map[string]Share)
	}
	item = s.canonical(item)
	s.members[item.Name] = item
}

// Remove удаляет категорию; отсутствие не является ошибкой
func (s *Shares) Remove(item Share) {
	delete(s.members, s.canonical(item).Name)
}

// canonical возвращает зарегистрированную категорию с тем же именем
// или псевдонимом; у незарегистрированной имя приводится к нижнему регистру.
func (s Shares) canonical(item Share) Share {
	if known, ok := s.registry().Lookup(item.Name); ok {
		return known
	}
	item.Name = canonicalName(item.Name)
	return item
}

// Clone возвращает независимую копию
func (s Shares) Clone() Shares {
	out := Shares{reg: s.reg, members: make(map[string]Share, len(s.members))}
	for k, v := range s.members {
		out.members[k] = v
	}
	return out
}

// Union возвращает новый набор; операнды не изменяются
func (s Shares) Union(other Shares) Shares {
	out := s.Clone()
	for k, v := range other.members {
		out.members[k] = v
	}
	return out
}

// IsAll сообщает, совпадает ли набор со всеми действующими категориями
func (s Shares) IsAll() bool {
	return s.Equal(s.registry().All())
}

// Equal сравнивает наборы по составу
func (s Shares) Equal(other Shares) bool {
	if len(s.members) != len(other.members) {
		return false
	}
	for k := range s.members {
		if _, ok := other.members[k]; !ok {
			return false
		}
	}
	return true
}

// Items возвращает категории, отсортированные по имени
func (s Shares) Items() []Share {
	out := make([]Share, 0, len(s.members))
	for _, v := range s.members {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names возвращает отсортированный список имён в нижнем регистре.
// Порядок стабилен, чтобы diff файла конфигурации оставался чистым.
func (s Shares) Names() []string {
	names := make([]string, 0, len(s.members))
	for k := range s.members {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// String возвращает имена через запятую
func (s Shares) String() string {
	return "[" + strings.Join(s.Names(), ", ") + "]"
}

// StringList приводит значение из документа к списку строк.
// nil даёт пустой список.
func StringList(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, domain.FormatError("share.string_list", "", "элемент %d: ожидалась строка, получено %T", i, item)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, domain.FormatError("share.string_list", "", "ожидался список строк, получено %T", raw)
	}
}

// ScalarList как StringList, но принимает и скалярные элементы других типов:
// YAML читает мир с именем 2024 как число. Вложенные списки и секции
// по-прежнему дают ConfigFormatError.
func ScalarList(raw interface{}) ([]string, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return StringList(raw)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case int, int64, uint64, float64, bool:
			out = append(out, fmt.Sprint(v))
		default:
			return nil, domain.FormatError("share.scalar_list", "", "элемент %d: ожидался скаляр, получено %T", i, item)
		}
	}
	return out, nil
}
