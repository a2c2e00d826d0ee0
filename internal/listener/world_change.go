package listener

import (
	"context"
	"strings"

	"github.com/annel0/mvinventories/internal/eventbus"
	"github.com/annel0/mvinventories/internal/logging"
	"github.com/annel0/mvinventories/internal/metrics"
	"github.com/annel0/mvinventories/internal/share"
)

// WorldManager менеджер миров хоста: знает, какие миры управляются плагином.
type WorldManager interface {
	IsManaged(world string) bool
	Worlds() []string
}

// SharingPolicy отвечает, какие категории общие для пары миров.
type SharingPolicy interface {
	SharedBetween(from, to string) share.Shares
}

// ShareHandler движок синхронизации состояния игрока. Реализуется хостом.
type ShareHandler interface {
	HandleSharing(playerID, from, to string, shared share.Shares) error
}

// WorldChangeListener обрабатывает переход игрока между мирами.
type WorldChangeListener struct {
	worlds  WorldManager
	policy  SharingPolicy
	handler ShareHandler
	log     *logging.Logger
	metrics *metrics.Metrics
}

// NewWorldChangeListener создаёт слушатель смены мира
func NewWorldChangeListener(worlds WorldManager, policy SharingPolicy, handler ShareHandler, log *logging.Logger, m *metrics.Metrics) *WorldChangeListener {
	return &WorldChangeListener{
		worlds:  worlds,
		policy:  policy,
		handler: handler,
		log:     log,
		metrics: m,
	}
}

// OnWorldChanged вызывается хостом при смене мира игроком.
// Ничего не делает, если миры совпадают или хотя бы один не управляется.
func (l *WorldChangeListener) OnWorldChanged(playerID, from, to string) error {
	if from == to {
		l.log.Debug("PlayerChangedWorldEvent fired when player travelling in same world.")
		l.metrics.IncWorldChange(metrics.OutcomeSameWorld)
		return nil
	}
	if !l.worlds.IsManaged(from) || !l.worlds.IsManaged(to) {
		l.log.Debug("The from or to world is not managed by Multiverse!")
		l.metrics.IncWorldChange(metrics.OutcomeUnmanaged)
		return nil
	}

	shared := l.policy.SharedBetween(from, to)
	l.log.Trace("Player %s: %s -> %s, shared %s", playerID, from, to, shared)
	if err := l.handler.HandleSharing(playerID, from, to, shared); err != nil {
		l.log.Error("Ошибка синхронизации игрока %s (%s -> %s): %v", playerID, from, to, err)
		l.metrics.IncWorldChange(metrics.OutcomeFailed)
		return err
	}
	l.metrics.IncWorldChange(metrics.OutcomeShared)
	return nil
}

// Bind подписывает слушатель на события WorldChanged шины
func (l *WorldChangeListener) Bind(bus eventbus.EventBus) (eventbus.Subscription, error) {
	return bus.Subscribe(context.Background(), eventbus.Filter{Types: []string{eventbus.EventWorldChanged}},
		func(ctx context.Context, ev *eventbus.Envelope) {
			wc, ok := ev.Payload.(eventbus.WorldChanged)
			if !ok {
				l.log.Warn("Событие %s %s без данных о смене мира", ev.EventType, ev.ID)
				return
			}
			_ = l.OnWorldChanged(wc.PlayerID, wc.From, wc.To)
		})
}

// StaticWorlds фиксированный список управляемых миров
type StaticWorlds struct {
	names []string
	index map[string]bool
}

// NewStaticWorlds создаёт менеджер миров из списка имён
func NewStaticWorlds(names []string) *StaticWorlds {
	sw := &StaticWorlds{index: make(map[string]bool)}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || sw.index[n] {
			continue
		}
		sw.index[n] = true
		sw.names = append(sw.names, n)
	}
	return sw
}

// IsManaged реализует WorldManager
func (sw *StaticWorlds) IsManaged(world string) bool {
	return sw.index[world]
}

// Worlds реализует WorldManager
func (sw *StaticWorlds) Worlds() []string {
	out := make([]string, len(sw.names))
	copy(out, sw.names)
	return out
}

// LogShareHandler только пишет в лог, какие категории были бы синхронизированы.
// Используется, когда движок синхронизации хоста не подключён.
type LogShareHandler struct {
	Log *logging.Logger
}

// HandleSharing реализует ShareHandler
func (h LogShareHandler) HandleSharing(playerID, from, to string, shared share.Shares) error {
	if shared.Len() == 0 {
		h.Log.Info("Игрок %s: %s -> %s, общих категорий нет", playerID, from, to)
		return nil
	}
	h.Log.Info("Игрок %s: %s -> %s, общие категории %s", playerID, from, to, shared)
	return nil
}
