package plugin

import (
	"fmt"

	"github.com/annel0/mvinventories/internal/config"
	"github.com/annel0/mvinventories/internal/group"
	"github.com/annel0/mvinventories/internal/listener"
	"github.com/annel0/mvinventories/internal/logging"
	"github.com/annel0/mvinventories/internal/metrics"
	"github.com/annel0/mvinventories/internal/share"
	"github.com/annel0/mvinventories/internal/storage"
)

// Version версия плагина, подставляется при сборке через -ldflags
var Version = "2.4-dev"

// Options внешние зависимости плагина
type Options struct {
	Worlds   listener.WorldManager // миры хоста; при nil группа default не создаётся
	Logger   *logging.Logger
	Metrics  *metrics.Metrics
	Registry *share.Registry
}

// Plugin связывает хранилище конфигурации и менеджер групп
// и управляет их жизненным циклом: Enable, Reload, Disable.
type Plugin struct {
	store  *config.Store
	groups *group.Manager
	reg    *share.Registry
	worlds listener.WorldManager
	log    *logging.Logger
}

// New создаёт плагин поверх хранилища документа
func New(st storage.DocumentStorage, opts Options) *Plugin {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Registry == nil {
		opts.Registry = share.Default
	}

	return &Plugin{
		store: config.NewStore(st,
			config.WithLogger(opts.Logger),
			config.WithRegistry(opts.Registry),
			config.WithMetrics(opts.Metrics),
		),
		groups: group.NewManager(opts.Registry),
		reg:    opts.Registry,
		worlds: opts.Worlds,
		log:    opts.Logger,
	}
}

// Store возвращает хранилище конфигурации
func (p *Plugin) Store() *config.Store {
	return p.store
}

// Groups возвращает менеджер групп
func (p *Plugin) Groups() *group.Manager {
	return p.groups
}

// Enable загружает конфиг, дописывает значения по умолчанию и сохраняет его,
// затем загружает группы. При первом запуске создаётся группа default
// из миров хоста.
func (p *Plugin) Enable() error {
	if err := p.load(); err != nil {
		return err
	}
	if err := p.store.Save(); err != nil {
		return err
	}

	if err := p.firstRun(); err != nil {
		return err
	}
	p.log.Info("Multiverse-Inventories %s: загружено групп %d", Version, p.groups.Len())
	return nil
}

// Reload перечитывает конфиг и группы. Несохранённые значения по умолчанию записываются.
func (p *Plugin) Reload() error {
	if err := p.load(); err != nil {
		return err
	}
	if p.store.Dirty() {
		return p.store.Save()
	}
	return nil
}

// Disable сохраняет конфигурацию
func (p *Plugin) Disable() error {
	return p.store.Save()
}

func (p *Plugin) load() error {
	if err := p.store.Reload(); err != nil {
		return err
	}

	optionals := p.store.OptionalShares()
	p.reg.EnableOptionals(optionals)
	if optionals.Len() > 0 {
		p.log.Debug("Используются опциональные категории %s", optionals)
	}

	groups, _ := p.store.ListWorldGroups()
	for _, g := range p.groups.Replace(groups) {
		p.log.Warn("Группа '%s' объявлена повторно и будет проигнорирована", g.Name())
	}
	p.groups.SetDefaultingUngroupedWorlds(p.store.IsDefaultingUngroupedWorlds())

	for world, names := range p.groups.Conflicts() {
		p.log.Warn("Мир '%s' входит в несколько групп: %v", world, names)
	}
	return nil
}

func (p *Plugin) firstRun() error {
	if !p.store.IsFirstRun() {
		return nil
	}
	if p.groups.Len() == 0 && p.worlds != nil && len(p.worlds.Worlds()) > 0 {
		def, err := p.groups.DefaultGroup(p.worlds.Worlds())
		if err != nil {
			return err
		}
		if err := p.AddGroup(def); err != nil {
			return err
		}
		p.log.Info("Создана группа '%s' для миров %v", def.Name(), def.Worlds())
	}
	if err := p.store.SetFirstRun(false); err != nil {
		return err
	}
	return p.store.Save()
}

// AddGroup добавляет новую группу и записывает её в документ.
// Имя должно быть уникальным без учёта регистра.
func (p *Plugin) AddGroup(g *group.WorldGroupProfile) error {
	if err := p.groups.Add(g); err != nil {
		return err
	}
	return p.store.UpdateWorldGroup(g)
}

// UpdateGroup записывает изменения существующей группы
func (p *Plugin) UpdateGroup(g *group.WorldGroupProfile) error {
	p.groups.Put(g)
	return p.store.UpdateWorldGroup(g)
}

// RemoveGroup удаляет группу; отсутствие группы не является ошибкой
func (p *Plugin) RemoveGroup(name string) error {
	g, ok := p.groups.Remove(name)
	if !ok {
		var err error
		if g, err = group.New(name, nil, p.reg.Empty()); err != nil {
			return err
		}
	}
	return p.store.RemoveWorldGroup(g)
}

// SharedBetween реализует listener.SharingPolicy
func (p *Plugin) SharedBetween(from, to string) share.Shares {
	return p.groups.SharedBetween(from, to)
}

// VersionInfo возвращает строки для отчёта о версиях
func (p *Plugin) VersionInfo() []string {
	lines := []string{
		fmt.Sprintf("[Multiverse-Inventories] Multiverse-Inventories Version: %s", Version),
		fmt.Sprintf("[Multiverse-Inventories] Config: %s", p.store.Location()),
		fmt.Sprintf("[Multiverse-Inventories] Locale: %s", p.store.Locale()),
		fmt.Sprintf("[Multiverse-Inventories] Debug Level: %d", p.store.GlobalDebug()),
		fmt.Sprintf("[Multiverse-Inventories] First Run: %t", p.store.IsFirstRun()),
		fmt.Sprintf("[Multiverse-Inventories] Using Bypass: %t", p.store.IsUsingBypass()),
		fmt.Sprintf("[Multiverse-Inventories] Default Ungrouped Worlds: %t", p.store.IsDefaultingUngroupedWorlds()),
		fmt.Sprintf("[Multiverse-Inventories] Optional Shares: %s", p.store.OptionalShares()),
		fmt.Sprintf("[Multiverse-Inventories] Groups: %d", p.groups.Len()),
	}
	for _, g := range p.groups.List() {
		lines = append(lines, fmt.Sprintf("[Multiverse-Inventories]   %s", g))
	}
	return lines
}
