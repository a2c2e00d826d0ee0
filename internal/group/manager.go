package group

import (
	"errors"
	"fmt"
	"sort"

	"github.com/annel0/mvinventories/internal/share"
)

// DefaultGroupName имя группы, создаваемой при первом запуске
const DefaultGroupName = "default"

// ErrDuplicateGroup возвращается при добавлении группы с занятым именем
var ErrDuplicateGroup = errors.New("group: группа с таким именем уже существует")

// Manager хранит группы в памяти. Имена уникальны без учёта регистра.
// Вызывается из основного потока хоста, поэтому не синхронизирован.
type Manager struct {
	reg    *share.Registry
	groups map[string]*WorldGroupProfile // Key() -> группа

	// useDefault: миры вне групп используют настройки группы default
	useDefault bool
}

// NewManager создаёт пустой менеджер групп
func NewManager(reg *share.Registry) *Manager {
	if reg == nil {
		reg = share.Default
	}
	return &Manager{
		reg:    reg,
		groups: make(map[string]*WorldGroupProfile),
	}
}

// SetDefaultingUngroupedWorlds включает использование группы default для миров вне групп
func (m *Manager) SetDefaultingUngroupedWorlds(enabled bool) {
	m.useDefault = enabled
}

// Add добавляет группу
func (m *Manager) Add(p *WorldGroupProfile) error {
	if _, ok := m.groups[p.Key()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateGroup, p.Name())
	}
	m.groups[p.Key()] = p
	return nil
}

// Put добавляет или заменяет группу с тем же именем
func (m *Manager) Put(p *WorldGroupProfile) {
	m.groups[p.Key()] = p
}

// Get ищет группу по имени без учёта регистра
func (m *Manager) Get(name string) (*WorldGroupProfile, bool) {
	p, ok := m.groups[share.FoldName(name)]
	return p, ok
}

// Remove удаляет группу; отсутствие группы не является ошибкой
func (m *Manager) Remove(name string) (*WorldGroupProfile, bool) {
	key := share.FoldName(name)
	p, ok := m.groups[key]
	delete(m.groups, key)
	return p, ok
}

// Replace заменяет содержимое менеджера списком групп (после загрузки конфига).
// Группы с повторяющимися именами после первой возвращаются как отклонённые.
func (m *Manager) Replace(groups []*WorldGroupProfile) (rejected []*WorldGroupProfile) {
	m.groups = make(map[string]*WorldGroupProfile, len(groups))
	for _, g := range groups {
		if err := m.Add(g); err != nil {
			rejected = append(rejected, g)
		}
	}
	return rejected
}

// List возвращает группы, отсортированные по имени
func (m *Manager) List() []*WorldGroupProfile {
	out := make([]*WorldGroupProfile, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Len возвращает количество групп
func (m *Manager) Len() int {
	return len(m.groups)
}

// GroupsForWorld возвращает группы, содержащие мир. Если мир не входит
// ни в одну группу и включён default_ungrouped_worlds, возвращается группа default.
func (m *Manager) GroupsForWorld(world string) []*WorldGroupProfile {
	var out []*WorldGroupProfile
	for _, g := range m.List() {
		if g.ContainsWorld(world) {
			out = append(out, g)
		}
	}
	if len(out) == 0 && m.useDefault {
		if def, ok := m.Get(DefaultGroupName); ok {
			out = append(out, def)
		}
	}
	return out
}

// SharedBetween возвращает объединение категорий всех групп,
// в которые входят оба мира.
func (m *Manager) SharedBetween(from, to string) share.Shares {
	shared := m.reg.Empty()
	toGroups := make(map[string]bool)
	for _, g := range m.GroupsForWorld(to) {
		toGroups[g.Key()] = true
	}
	for _, g := range m.GroupsForWorld(from) {
		if toGroups[g.Key()] {
			shared = shared.Union(g.Shares())
		}
	}
	return shared
}

// Conflicts возвращает миры, входящие более чем в одну группу, с именами групп.
// Ограничение "мир в одной группе" рекомендательное и проверяется вызывающим.
func (m *Manager) Conflicts() map[string][]string {
	seen := make(map[string][]string)
	display := make(map[string]string)
	for _, g := range m.List() {
		for key, world := range g.worlds {
			seen[key] = append(seen[key], g.Name())
			display[key] = world
		}
	}

	conflicts := make(map[string][]string)
	for key, names := range seen {
		if len(names) > 1 {
			conflicts[display[key]] = names
		}
	}
	return conflicts
}

// DefaultGroup строит группу default со всеми категориями для первого запуска.
func (m *Manager) DefaultGroup(worlds []string) (*WorldGroupProfile, error) {
	return New(DefaultGroupName, worlds, m.reg.All())
}
