package group

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/annel0/mvinventories/internal/domain"
	"github.com/annel0/mvinventories/internal/share"
)

// Ключи секции группы в документе конфигурации
const (
	KeyWorlds = "worlds"
	KeyShares = "shares"
)

// ErrEmptyName возвращается при создании группы без имени
var ErrEmptyName = errors.New("group: пустое имя группы")

// WorldGroupProfile именованный набор миров с общей политикой Shares.
type WorldGroupProfile struct {
	name   string
	worlds map[string]string // FoldName(мир) -> имя мира как задано
	shares share.Shares
}

// New создаёт группу. Уникальность имени проверяет владелец коллекции (Manager).
func New(name string, worlds []string, shares share.Shares) (*WorldGroupProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if strings.Contains(name, ".") {
		// Точка разделяет пути в документе
		return nil, fmt.Errorf("group: имя %q не может содержать точку", name)
	}

	p := &WorldGroupProfile{
		name:   name,
		worlds: make(map[string]string, len(worlds)),
		shares: shares.Clone(),
	}
	for _, w := range worlds {
		p.AddWorld(w)
	}
	return p, nil
}

// Name возвращает имя группы в исходном регистре
func (p *WorldGroupProfile) Name() string {
	return p.name
}

// Key возвращает имя в форме для регистронезависимого сравнения
func (p *WorldGroupProfile) Key() string {
	return share.FoldName(p.name)
}

// AddWorld добавляет мир; повторное добавление ничего не меняет
func (p *WorldGroupProfile) AddWorld(world string) {
	world = strings.TrimSpace(world)
	if world == "" {
		return
	}
	key := share.FoldName(world)
	if _, ok := p.worlds[key]; ok {
		return
	}
	p.worlds[key] = world
}

// RemoveWorld удаляет мир; отсутствие мира не является ошибкой
func (p *WorldGroupProfile) RemoveWorld(world string) {
	delete(p.worlds, share.FoldName(world))
}

// ContainsWorld проверяет членство мира без учёта регистра
func (p *WorldGroupProfile) ContainsWorld(world string) bool {
	_, ok := p.worlds[share.FoldName(world)]
	return ok
}

// Worlds возвращает отсортированный список миров
func (p *WorldGroupProfile) Worlds() []string {
	out := make([]string, 0, len(p.worlds))
	for _, w := range p.worlds {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// SetShares заменяет набор категорий копией переданного
func (p *WorldGroupProfile) SetShares(shares share.Shares) {
	p.shares = shares.Clone()
}

// Shares возвращает копию набора категорий
func (p *WorldGroupProfile) Shares() share.Shares {
	return p.shares.Clone()
}

// Serialize возвращает секцию для записи в документ
func (p *WorldGroupProfile) Serialize() map[string]interface{} {
	return map[string]interface{}{
		KeyWorlds: p.Worlds(),
		KeyShares: p.shares.Names(),
	}
}

func (p *WorldGroupProfile) String() string {
	return fmt.Sprintf("%s{worlds=%v shares=%s}", p.name, p.Worlds(), p.shares)
}

// Deserialize восстанавливает группу из секции документа.
// worlds обязателен и должен быть списком скаляров; отсутствие shares
// означает пустой набор.
func Deserialize(name string, data map[string]interface{}, reg *share.Registry) (*WorldGroupProfile, error) {
	const op = "group.deserialize"
	if reg == nil {
		reg = share.Default
	}

	rawWorlds, ok := data[KeyWorlds]
	if !ok {
		return nil, domain.GroupParseError(op, name, fmt.Errorf("нет списка %q", KeyWorlds))
	}
	if rawWorlds == nil {
		return nil, domain.GroupParseError(op, name, fmt.Errorf("%q не является списком", KeyWorlds))
	}
	worlds, err := share.ScalarList(rawWorlds)
	if err != nil {
		return nil, domain.GroupParseError(op, name, fmt.Errorf("%s: %w", KeyWorlds, err))
	}

	shares := reg.Empty()
	if rawShares, ok := data[KeyShares]; ok {
		shares, err = reg.FromList(rawShares)
		if err != nil {
			return nil, domain.GroupParseError(op, name, fmt.Errorf("%s: %w", KeyShares, err))
		}
	}

	p, err := New(name, worlds, shares)
	if err != nil {
		return nil, domain.GroupParseError(op, name, err)
	}
	return p, nil
}
