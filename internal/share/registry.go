package share

import (
	"fmt"
	"strings"

	"github.com/annel0/mvinventories/internal/logging"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Share одна категория состояния игрока, которую можно синхронизировать
// между мирами группы.
type Share struct {
	Name     string   // каноническое имя в нижнем регистре
	Aliases  []string // дополнительные имена для разбора конфига
	Optional bool     // опциональные категории действуют только если включены в shares.use_optionals
}

// Встроенные категории
var (
	Inventory  = Share{Name: "inventory", Aliases: []string{"inv", "inventories"}}
	Experience = Share{Name: "experience", Aliases: []string{"exp", "xp", "level"}}
	Health     = Share{Name: "health", Aliases: []string{"hp"}}
	Hunger     = Share{Name: "hunger", Aliases: []string{"food"}}
	Beds       = Share{Name: "beds", Aliases: []string{"bed", "spawn"}}

	// Economy: единственная встроенная опциональная категория
	Economy = Share{Name: "economy", Aliases: []string{"money", "balance"}, Optional: true}
)

// allTokens обозначают "все категории" в списке shares
var allTokens = []string{"all", "*", "everything"}

// FoldName приводит имя к форме для регистронезависимого сравнения.
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// canonicalName: имя категории без пробелов по краям в нижнем регистре
func canonicalName(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// IsAllName сообщает, обозначает ли имя "все категории"
func IsAllName(name string) bool {
	return isAllToken(FoldName(name))
}

func isAllToken(key string) bool {
	for _, t := range allTokens {
		if key == t {
			return true
		}
	}
	return false
}

// Registry хранит известные категории: встроенные и зарегистрированные
// при старте процесса, а также набор включённых опциональных.
type Registry struct {
	byKey   map[string]Share // имя и псевдонимы -> категория
	known   []Share          // в порядке регистрации
	enabled map[string]bool  // включённые опциональные категории по имени
}

// NewRegistry создаёт регистр со встроенными категориями
func NewRegistry() *Registry {
	r := &Registry{
		byKey:   make(map[string]Share),
		enabled: make(map[string]bool),
	}
	for _, s := range []Share{Inventory, Experience, Health, Hunger, Beds, Economy} {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Default регистр процесса. Опциональные категории плагинов
// регистрируются в нём при старте.
var Default = NewRegistry()

// Register добавляет категорию в регистр. Имя и псевдонимы не должны
// пересекаться с уже известными.
func (r *Registry) Register(s Share) error {
	name := canonicalName(s.Name)
	if name == "" {
		return fmt.Errorf("share: пустое имя категории")
	}
	s.Name = name

	keys := make([]string, 0, len(s.Aliases)+1)
	keys = append(keys, FoldName(name))
	for _, alias := range s.Aliases {
		if k := FoldName(alias); k != "" {
			keys = append(keys, k)
		}
	}
	for _, k := range keys {
		if isAllToken(k) {
			return fmt.Errorf("share: имя %q зарезервировано", k)
		}
		if existing, ok := r.byKey[k]; ok {
			return fmt.Errorf("share: имя %q уже занято категорией %s", k, existing.Name)
		}
	}
	for _, k := range keys {
		r.byKey[k] = s
	}
	r.known = append(r.known, s)
	return nil
}

// Lookup ищет категорию по имени или псевдониму без учёта регистра
func (r *Registry) Lookup(name string) (Share, bool) {
	s, ok := r.byKey[FoldName(name)]
	return s, ok
}

// Known возвращает все зарегистрированные категории
func (r *Registry) Known() []Share {
	out := make([]Share, len(r.known))
	copy(out, r.known)
	return out
}

// EnableOptionals задаёт набор используемых опциональных категорий.
// Неопциональные элементы набора игнорируются.
func (r *Registry) EnableOptionals(optionals Shares) {
	r.enabled = make(map[string]bool)
	for _, s := range optionals.members {
		if s.Optional {
			r.enabled[s.Name] = true
		}
	}
}

// IsEnabled сообщает, действует ли категория: встроенные действуют всегда,
// опциональные только после EnableOptionals.
func (r *Registry) IsEnabled(s Share) bool {
	if !s.Optional {
		return true
	}
	return r.enabled[s.Name]
}

// All возвращает набор всех действующих категорий
func (r *Registry) All() Shares {
	all := r.Empty()
	for _, s := range r.known {
		if r.IsEnabled(s) {
			all.Add(s)
		}
	}
	return all
}

// Empty возвращает пустой набор, привязанный к регистру
func (r *Registry) Empty() Shares {
	return Shares{reg: r, members: make(map[string]Share)}
}

// FromNames строит набор по списку имён. Неизвестные имена пропускаются:
// конфиг, записанный более новой версией, должен загружаться без ошибок.
func (r *Registry) FromNames(names []string) Shares {
	out := r.Empty()
	for _, name := range names {
		key := FoldName(name)
		if isAllToken(key) {
			out = out.Union(r.All())
			continue
		}
		s, ok := r.byKey[key]
		if !ok {
			logging.Debug("Shares: неизвестная категория '%s' пропущена", name)
			continue
		}
		out.Add(s)
	}
	return out
}

// FromList разбирает значение из документа конфигурации.
// nil означает пустой набор; всё, что не является списком строк,
// возвращает ConfigFormatError.
func (r *Registry) FromList(raw interface{}) (Shares, error) {
	names, err := StringList(raw)
	if err != nil {
		return r.Empty(), err
	}
	return r.FromNames(names), nil
}

// FromNames разбирает имена через регистр процесса
func FromNames(names []string) Shares {
	return Default.FromNames(names)
}

// FromList разбирает значение документа через регистр процесса
func FromList(raw interface{}) (Shares, error) {
	return Default.FromList(raw)
}
