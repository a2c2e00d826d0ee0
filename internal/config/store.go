package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/annel0/mvinventories/internal/domain"
	"github.com/annel0/mvinventories/internal/group"
	"github.com/annel0/mvinventories/internal/logging"
	"github.com/annel0/mvinventories/internal/metrics"
	"github.com/annel0/mvinventories/internal/share"
	"github.com/annel0/mvinventories/internal/storage"
)

// State этап жизненного цикла документа
type State int

const (
	StateUninitialized State = iota
	StateLoaded
	StateDefaulted
	StatePersisted
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	case StateDefaulted:
		return "defaulted"
	case StatePersisted:
		return "persisted"
	default:
		return "unknown"
	}
}

// ErrNotLoaded возвращается операциями, требующими загруженного документа
var ErrNotLoaded = errors.New("config: документ не загружен")

// Store владеет документом конфигурации: загрузка, значения по умолчанию,
// группы миров и сохранение. Вызывается только из основного потока хоста,
// поэтому блокировок нет.
type Store struct {
	storage storage.DocumentStorage
	log     *logging.Logger
	reg     *share.Registry
	metrics *metrics.Metrics

	doc   *Document
	state State
	dirty bool

	// optional: кэш shares.use_optionals. Записывается обратно при Save
	// только если был вычислен, иначе непрочитанная настройка затёрлась бы
	// пустым списком.
	optional       share.Shares
	optionalLoaded bool
	// optionalUnknown: имена из use_optionals, которых нет в регистре
	// (категории более новой версии). Сохраняются в файле как есть.
	optionalUnknown []string
}

// Option настраивает Store
type Option func(*Store)

// WithLogger задаёт логгер хранилища; уровень отладки из конфига применяется к нему
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithRegistry задаёт регистр категорий для разбора shares
func WithRegistry(r *share.Registry) Option {
	return func(s *Store) { s.reg = r }
}

// WithMetrics подключает Prometheus-метрики
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore создаёт хранилище в состоянии Uninitialized
func NewStore(st storage.DocumentStorage, opts ...Option) *Store {
	s := &Store{storage: st}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.Default()
	}
	if s.reg == nil {
		s.reg = share.Default
	}
	return s
}

// Open выполняет Load и ApplyDefaults
func Open(st storage.DocumentStorage, opts ...Option) (*Store, error) {
	s := NewStore(st, opts...)
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// State возвращает текущий этап жизненного цикла
func (s *Store) State() State {
	return s.state
}

// Dirty сообщает о несохранённых изменениях
func (s *Store) Dirty() bool {
	return s.dirty
}

// Location возвращает место хранения документа
func (s *Store) Location() string {
	return s.storage.Location()
}

// Document возвращает документ для чтения; nil до загрузки
func (s *Store) Document() *Document {
	return s.doc
}

// Load читает документ из хранилища. Отсутствующий документ читается как пустой.
// Кэш опциональных категорий сбрасывается.
func (s *Store) Load() error {
	data, err := s.storage.Read()
	if err != nil {
		return err
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return fmt.Errorf("%s: %w", s.storage.Location(), err)
	}

	s.doc = doc
	s.state = StateLoaded
	s.dirty = false
	s.optional = share.Shares{}
	s.optionalLoaded = false
	s.optionalUnknown = nil
	s.metrics.IncLoads()
	s.log.Debug("Config: загружен %s", s.storage.Location())
	return nil
}

// ApplyDefaults записывает значения по умолчанию для отсутствующих настроек
// и заново проставляет комментарии всем известным путям. Существующие значения
// не перезаписываются.
func (s *Store) ApplyDefaults() error {
	if s.doc == nil {
		return ErrNotLoaded
	}

	for _, setting := range Settings {
		if !s.doc.Has(setting.Path) {
			if setting.Default != nil {
				s.log.Debug("Config: Defaulting '%s' to %v", setting.Path, setting.Default)
				if err := s.doc.Set(setting.Path, setting.Default); err != nil {
					return err
				}
			} else if err := s.doc.CreateSection(setting.Path, nil); err != nil {
				return err
			}
			s.dirty = true
		}
		s.doc.SetComment(setting.Path, setting.Comments)
	}
	s.doc.SetHeader(FileHeader)

	s.state = StateDefaulted
	s.log.SetDebugLevel(s.GlobalDebug())
	return nil
}

// Reload перечитывает документ и применяет значения по умолчанию
func (s *Store) Reload() error {
	if err := s.Load(); err != nil {
		return err
	}
	return s.ApplyDefaults()
}

// Save сбрасывает производное состояние в документ и записывает его целиком.
func (s *Store) Save() error {
	if s.doc == nil {
		return ErrNotLoaded
	}

	if s.optionalLoaded {
		names := append(s.optional.Names(), s.optionalUnknown...)
		if err := s.doc.Set(PathOptionalShares, names); err != nil {
			return err
		}
		s.doc.SetComment(PathOptionalShares, OptionalShares.Comments)
	}

	data, err := s.doc.Marshal()
	if err != nil {
		s.metrics.ObserveSave(err)
		return err
	}
	if err := s.storage.Write(data); err != nil {
		s.metrics.ObserveSave(err)
		s.log.Error("Config: ошибка сохранения %s: %v", s.storage.Location(), err)
		return err
	}

	s.metrics.ObserveSave(nil)
	s.state = StatePersisted
	s.dirty = false
	s.log.Trace("Config: сохранён %s (%d байт)", s.storage.Location(), len(data))
	return nil
}

// ListWorldGroups разбирает секцию groups. Второе значение false означает,
// что секции нет вовсе (конфиг ещё не инициализирован), в отличие от пустой секции.
// Некорректные группы пропускаются с предупреждением.
func (s *Store) ListWorldGroups() ([]*group.WorldGroupProfile, bool) {
	s.log.Trace("Getting world groups from config file")
	if s.doc == nil {
		return nil, false
	}

	names, ok := s.doc.Keys(PathGroups)
	if !ok {
		s.log.Trace("Could not find a 'groups' section in config!")
		return nil, false
	}
	s.log.Trace("Loading groups: %v", names)

	groups := make([]*group.WorldGroupProfile, 0, len(names))
	skipped := 0
	for _, name := range names {
		s.log.Trace("Attempting to load group: %s...", name)

		section, ok := s.doc.Section(PathGroups + "." + name)
		if !ok {
			s.log.Warn("Group: '%s' is not formatted correctly!", name)
			skipped++
			continue
		}

		if texts, ok := s.doc.ScalarTexts(PathGroups + "." + name + "." + group.KeyWorlds); ok {
			section[group.KeyWorlds] = texts
		}

		profile, err := group.Deserialize(name, section, s.reg)
		if err != nil {
			s.log.Warn("Unable to load world group: %s", name)
			s.log.Warn("Reason: %v", err)
			skipped++
			continue
		}

		groups = append(groups, profile)
		s.log.Trace("Group: %s added to memory", profile.Name())
	}

	s.metrics.ObserveGroups(len(groups), skipped)
	return groups, true
}

// UpdateWorldGroup записывает группу в groups.<имя>, полностью заменяя
// прежнюю секцию. Секции с тем же именем в другом регистре удаляются.
func (s *Store) UpdateWorldGroup(p *group.WorldGroupProfile) error {
	if s.doc == nil {
		return ErrNotLoaded
	}
	s.log.Trace("Updating group in config: %s", p.Name())

	s.removeGroupKeys(p, false)
	if err := s.doc.CreateSection(PathGroups+"."+p.Name(), p.Serialize()); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// RemoveWorldGroup удаляет секцию группы; отсутствие секции не является ошибкой
func (s *Store) RemoveWorldGroup(p *group.WorldGroupProfile) error {
	if s.doc == nil {
		return ErrNotLoaded
	}
	s.log.Trace("Removing group from config: %s", p.Name())

	if s.removeGroupKeys(p, true) {
		s.dirty = true
	}
	return nil
}

// removeGroupKeys удаляет ключи groups.*, совпадающие с именем группы без учёта
// регистра; точное совпадение удаляется только при includeExact.
func (s *Store) removeGroupKeys(p *group.WorldGroupProfile, includeExact bool) bool {
	names, ok := s.doc.Keys(PathGroups)
	if !ok {
		return false
	}
	removed := false
	for _, name := range names {
		if share.FoldName(name) != p.Key() {
			continue
		}
		if name == p.Name() && !includeExact {
			continue
		}
		if s.doc.Delete(PathGroups + "." + name) {
			removed = true
		}
	}
	return removed
}

// OptionalShares возвращает включённые опциональные категории.
// Вычисляется один раз за цикл загрузки; пустой и отсутствующий список
// одинаково означают "нет опциональных категорий".
func (s *Store) OptionalShares() share.Shares {
	if !s.optionalLoaded {
		s.optional = s.reg.Empty()
		if s.doc != nil {
			raw, _ := s.doc.Get(PathOptionalShares)
			names, err := share.StringList(raw)
			if err != nil {
				s.log.Warn("Config: '%s' has invalid format, ignoring: %v", PathOptionalShares, err)
			} else {
				s.optional = s.reg.FromNames(names)
				s.optionalUnknown = s.unknownShares(names)
			}
		}
		s.optionalLoaded = true
	}
	return s.optional.Clone()
}

// SetOptionalShares заменяет кэш опциональных категорий; в документ он попадёт при Save.
// Неизвестные этой версии имена из файла при этом отбрасываются.
func (s *Store) SetOptionalShares(shares share.Shares) {
	s.optional = shares.Clone()
	s.optionalLoaded = true
	s.optionalUnknown = nil
	s.dirty = true
}

// unknownShares возвращает имена, которых нет в регистре, без повторов
func (s *Store) unknownShares(names []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range names {
		key := share.FoldName(name)
		if key == "" || seen[key] || share.IsAllName(name) {
			continue
		}
		if _, ok := s.reg.Lookup(name); ok {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(name))
	}
	return out
}

// GlobalDebug возвращает уровень отладки
func (s *Store) GlobalDebug() int {
	return s.getInt(DebugLevel)
}

// SetGlobalDebug задаёт уровень отладки и сразу применяет его к логгеру
func (s *Store) SetGlobalDebug(level int) error {
	if err := s.set(DebugLevel, level); err != nil {
		return err
	}
	s.log.SetDebugLevel(level)
	return nil
}

// Locale возвращает имя локали
func (s *Store) Locale() string {
	return s.getString(Locale)
}

// IsFirstRun сообщает, нужно ли создать группы из миров хоста
func (s *Store) IsFirstRun() bool {
	return s.getBool(FirstRun)
}

// SetFirstRun задаёт флаг первого запуска
func (s *Store) SetFirstRun(firstRun bool) error {
	return s.set(FirstRun, firstRun)
}

// IsUsingBypass сообщает, включены ли bypass-права
func (s *Store) IsUsingBypass() bool {
	return s.getBool(UseBypass)
}

// SetUsingBypass включает или выключает bypass-права
func (s *Store) SetUsingBypass(useBypass bool) error {
	return s.set(UseBypass, useBypass)
}

// IsDefaultingUngroupedWorlds сообщает, используют ли миры вне групп группу default
func (s *Store) IsDefaultingUngroupedWorlds() bool {
	return s.getBool(DefaultUngroupedWorlds)
}

// SetDefaultingUngroupedWorlds задаёт default_ungrouped_worlds
func (s *Store) SetDefaultingUngroupedWorlds(useDefaultGroup bool) error {
	return s.set(DefaultUngroupedWorlds, useDefaultGroup)
}

func (s *Store) set(setting Setting, value interface{}) error {
	if s.doc == nil {
		return ErrNotLoaded
	}
	if err := s.doc.Set(setting.Path, value); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// lookup возвращает значение настройки или nil, если его нет
func (s *Store) lookup(setting Setting) interface{} {
	if s.doc == nil {
		return nil
	}
	v, ok := s.doc.Get(setting.Path)
	if !ok {
		return nil
	}
	return v
}

func (s *Store) warnFormat(setting Setting, v interface{}) {
	err := domain.FormatError("config.get", setting.Path, "ожидался %T, получено %T", setting.Default, v)
	s.log.Warn("Config: %v; используется значение по умолчанию %v", err, setting.Default)
}

func (s *Store) getBool(setting Setting) bool {
	def, _ := setting.Default.(bool)
	v := s.lookup(setting)
	if v == nil {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		s.warnFormat(setting, v)
		return def
	}
	return b
}

func (s *Store) getInt(setting Setting) int {
	def, _ := setting.Default.(int)
	v := s.lookup(setting)
	switch n := v.(type) {
	case nil:
		return def
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	s.warnFormat(setting, v)
	return def
}

func (s *Store) getString(setting Setting) string {
	def, _ := setting.Default.(string)
	v := s.lookup(setting)
	switch str := v.(type) {
	case nil:
		return def
	case string:
		return str
	case int, int64, float64, bool:
		return fmt.Sprint(str)
	}
	s.warnFormat(setting, v)
	return def
}
