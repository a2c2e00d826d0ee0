package eventbus

import (
	"net/http"
	"time"

	"github.com/annel0/mvinventories/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsExporter периодически переносит Stats шины в Prometheus-метрики
// и при необходимости отдаёт их по HTTP.
type MetricsExporter struct {
	bus      EventBus
	log      *logging.Logger
	gatherer prometheus.Gatherer
	interval time.Duration
	quit     chan struct{}
	done     chan struct{}
	started  bool
	stopped  bool
	// Prometheus metrics
	published prometheus.Counter
	consumed  prometheus.Counter
	dropped   prometheus.Counter
	inflight  prometheus.Gauge
}

// NewMetricsExporter создаёт экспортер и регистрирует метрики в reg.
// Ни HTTP-сервер, ни цикл обновления не запускаются.
func NewMetricsExporter(bus EventBus, reg *prometheus.Registry, log *logging.Logger) (*MetricsExporter, error) {
	me := &MetricsExporter{
		bus:      bus,
		log:      log,
		gatherer: reg,
		interval: time.Second,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mvinventories",
			Subsystem: "eventbus",
			Name:      "messages_published_total",
			Help:      "Общее число опубликованных событий хоста.",
		}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mvinventories",
			Subsystem: "eventbus",
			Name:      "messages_consumed_total",
			Help:      "Общее число доставок событий подписчикам.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mvinventories",
			Subsystem: "eventbus",
			Name:      "messages_dropped_total",
			Help:      "Событий, не поставленных в очередь из-за отмены контекста.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mvinventories",
			Subsystem: "eventbus",
			Name:      "messages_inflight",
			Help:      "Количество событий в очереди (не доставленных).",
		}),
	}

	for _, c := range []prometheus.Collector{me.published, me.consumed, me.dropped, me.inflight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return me, nil
}

// Start запускает цикл обновления метрик без HTTP-сервера.
func (m *MetricsExporter) Start() {
	if m.started {
		return
	}
	m.started = true
	go m.loop()
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе (например, ":2112").
// Метод неблокирующий: HTTP-сервер стартует в отдельной горутине.
func (m *MetricsExporter) StartHTTP(addr string) {
	go func() {
		m.log.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		handler := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
		if err := http.ListenAndServe(addr, handler); err != nil {
			m.log.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	m.Start()
}

// Stop останавливает обновление метрик и переносит последние значения.
// HTTP-сервер при этом не завершается.
func (m *MetricsExporter) Stop() {
	if !m.started || m.stopped {
		return
	}
	m.stopped = true
	close(m.quit)
	<-m.done
}

func (m *MetricsExporter) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	defer close(m.done)

	// Для коррекции Counter нужно хранить прошлое значение и прибавлять дельту.
	var prev Stats

	for {
		select {
		case <-ticker.C:
			prev = m.sync(prev)
		case <-m.quit:
			m.sync(prev)
			return
		}
	}
}

// sync переносит приращения Stats с прошлого вызова в метрики
func (m *MetricsExporter) sync(prev Stats) Stats {
	stats := m.bus.Metrics()

	if d := stats.Published - prev.Published; d > 0 {
		m.published.Add(float64(d))
	}
	if d := stats.Consumed - prev.Consumed; d > 0 {
		m.consumed.Add(float64(d))
	}
	if d := stats.Dropped - prev.Dropped; d > 0 {
		m.dropped.Add(float64(d))
	}
	m.inflight.Set(float64(stats.InFlight))

	return stats
}
