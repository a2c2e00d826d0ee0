package eventbus

import (
	"context"

	"github.com/annel0/mvinventories/internal/logging"
)

// StartLoggingListener подписывается на все события хоста и пишет их в лог
// на уровне TRACE. Функция неблокирующая.
func StartLoggingListener(bus EventBus, log *logging.Logger) (Subscription, error) {
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		if wc, ok := ev.Payload.(WorldChanged); ok {
			log.Trace("[EventBus] %s %s src=%s player=%s %s -> %s", ev.ID, ev.EventType, ev.Source, wc.PlayerID, wc.From, wc.To)
			return
		}
		log.Trace("[EventBus] %s %s src=%s", ev.ID, ev.EventType, ev.Source)
	})
	if err != nil {
		return nil, err
	}
	log.Debug("LoggingListener: подписка на все события активирована")
	return sub, nil
}
