package eventbus

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Типы событий хоста
const (
	EventWorldChanged   = "WorldChanged"
	EventConfigReload   = "ConfigReload"
	EventVersionRequest = "VersionRequest"
)

// Envelope описывает универсальный контейнер события хоста.
type Envelope struct {
	ID        string            // UUID события
	Timestamp time.Time         // Время создания события (UTC)
	Source    string            // Имя источника (хост, утилита)
	EventType string            // WorldChanged, ConfigReload, VersionRequest
	Payload   interface{}       // Одна из структур ниже
	Metadata  map[string]string // Произвольные метаданные
}

// WorldChanged игрок перешёл из одного мира в другой.
type WorldChanged struct {
	PlayerID string
	From     string
	To       string
}

// ConfigReload хост просит перечитать конфигурацию.
// Слушатели дописывают имена перечитанных файлов в Report.
type ConfigReload struct {
	Report *Report
}

// VersionRequest хост собирает отчёт о версиях и настройках.
type VersionRequest struct {
	Report *Report
}

// Report общий отчёт, в который слушатели только дописывают строки.
type Report struct {
	mu    sync.Mutex
	lines []string
}

// NewReport создаёт пустой отчёт
func NewReport() *Report {
	return &Report{}
}

// Append дописывает строки в отчёт
func (r *Report) Append(lines ...string) {
	r.mu.Lock()
	r.lines = append(r.lines, lines...)
	r.mu.Unlock()
}

// Lines возвращает копию строк отчёта
func (r *Report) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// NewEnvelope создаёт конверт с новым UUID и текущим временем.
func NewEnvelope(source, eventType string, payload interface{}) *Envelope {
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Payload:   payload,
	}
}

// Filter позволяет подписаться только на нужные события.
type Filter struct {
	Types   []string // Пусто: все типы.
	Sources []string // Пусто: все источники.
}

// Subscription возвращается при подписке; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события.
type Handler func(ctx context.Context, ev *Envelope)

// Stats агрегированные метрики шины.
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// ErrClosed возвращается при публикации в закрытую шину
var ErrClosed = errors.New("eventbus: шина закрыта")

// EventBus определяет абстракцию шины событий хоста.
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close()
}

//================ In-Memory implementation =================//

// memoryBus доставляет события по одному в единственной горутине,
// которая играет роль основного потока хоста: обработчики никогда
// не выполняются параллельно друг с другом.
type memoryBus struct {
	subMu       sync.RWMutex
	subscribers map[int]subscriber
	nextID      int

	statsMu sync.Mutex
	stats   Stats

	// sendMu защищает buffer от закрытия во время отправки
	sendMu sync.RWMutex
	closed bool
	buffer chan *Envelope
	done   chan struct{}
}

type subscriber struct {
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewMemoryBus создаёт in-memory Bus с указанным буфером.
func NewMemoryBus(capacity int) EventBus {
	mb := &memoryBus{
		subscribers: make(map[int]subscriber),
		buffer:      make(chan *Envelope, capacity),
		done:        make(chan struct{}),
	}
	go mb.dispatchLoop()
	return mb
}

// Publish ставит событие в очередь. События хоста не отбрасываются:
// при заполненном буфере вызов ждёт места или отмены контекста.
func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	mb.sendMu.RLock()
	defer mb.sendMu.RUnlock()
	if mb.closed {
		return ErrClosed
	}

	select {
	case mb.buffer <- ev:
		mb.statsMu.Lock()
		mb.stats.Published++
		mb.statsMu.Unlock()
		return nil
	case <-ctx.Done():
		mb.statsMu.Lock()
		mb.stats.Dropped++
		mb.statsMu.Unlock()
		return ctx.Err()
	}
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	mb.subMu.Lock()
	defer mb.subMu.Unlock()

	id := mb.nextID
	mb.nextID++
	cctx, cancel := context.WithCancel(ctx)
	mb.subscribers[id] = subscriber{filter: f, handler: h, ctx: cctx, cancel: cancel}

	return &memSub{bus: mb, id: id}, nil
}

func (mb *memoryBus) Metrics() Stats {
	mb.statsMu.Lock()
	s := mb.stats
	mb.statsMu.Unlock()
	s.InFlight = len(mb.buffer)
	return s
}

// Close прекращает приём событий, доставляет уже поставленные в очередь
// и ждёт завершения диспетчера. Повторный вызов безопасен.
func (mb *memoryBus) Close() {
	mb.sendMu.Lock()
	if !mb.closed {
		mb.closed = true
		close(mb.buffer)
	}
	mb.sendMu.Unlock()

	<-mb.done
}

// dispatchLoop рассылает события подписчикам последовательно, в порядке подписки.
func (mb *memoryBus) dispatchLoop() {
	defer close(mb.done)

	for ev := range mb.buffer {
		for _, sub := range mb.snapshot() {
			if !matchFilter(ev, sub.filter) || sub.ctx.Err() != nil {
				continue
			}
			sub.handler(sub.ctx, ev)
			mb.statsMu.Lock()
			mb.stats.Consumed++
			mb.statsMu.Unlock()
		}
	}
}

func (mb *memoryBus) snapshot() []subscriber {
	mb.subMu.RLock()
	defer mb.subMu.RUnlock()

	ids := make([]int, 0, len(mb.subscribers))
	for id := range mb.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	subs := make([]subscriber, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, mb.subscribers[id])
	}
	return subs
}

func matchFilter(ev *Envelope, f Filter) bool {
	match := func(val string, arr []string) bool {
		if len(arr) == 0 {
			return true
		}
		for _, v := range arr {
			if v == val {
				return true
			}
		}
		return false
	}
	return match(ev.EventType, f.Types) && match(ev.Source, f.Sources)
}

type memSub struct {
	bus *memoryBus
	id  int
}

func (s *memSub) Unsubscribe() {
	s.bus.subMu.Lock()
	if sub, ok := s.bus.subscribers[s.id]; ok {
		sub.cancel()
		delete(s.bus.subscribers, s.id)
	}
	s.bus.subMu.Unlock()
}
