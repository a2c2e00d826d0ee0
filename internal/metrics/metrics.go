package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mvinventories"

// Metrics инкапсулирует Prometheus-метрики хранилища конфигурации
// и слушателей событий хоста. Нулевой указатель допустим: методы ничего не делают.
type Metrics struct {
	ConfigLoads   prometheus.Counter
	ConfigSaves   prometheus.Counter
	SaveErrors    prometheus.Counter
	GroupsLoaded  prometheus.Gauge
	GroupsSkipped prometheus.Counter
	Reloads       prometheus.Counter
	WorldChanges  *prometheus.CounterVec
}

// Результаты обработки смены мира (метка outcome)
const (
	OutcomeShared    = "shared"
	OutcomeSameWorld = "same_world"
	OutcomeUnmanaged = "unmanaged"
	OutcomeFailed    = "failed"
)

// New создаёт метрики и регистрирует их в reg.
// Тесты передают prometheus.NewRegistry(), чтобы не конфликтовать с глобальным регистром.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ConfigLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "loads_total",
			Help:      "Число загрузок документа конфигурации.",
		}),
		ConfigSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "saves_total",
			Help:      "Число успешных сохранений документа конфигурации.",
		}),
		SaveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "save_errors_total",
			Help:      "Число неудачных сохранений документа конфигурации.",
		}),
		GroupsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "groups",
			Name:      "loaded",
			Help:      "Количество групп миров, прочитанных при последнем разборе.",
		}),
		GroupsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "groups",
			Name:      "skipped_total",
			Help:      "Групп, пропущенных из-за ошибок формата.",
		}),
		Reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listener",
			Name:      "config_reloads_total",
			Help:      "Перезагрузок конфигурации по запросу хоста.",
		}),
		WorldChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listener",
			Name:      "world_changes_total",
			Help:      "Событий смены мира по результату обработки.",
		}, []string{"outcome"}),
	}

	collectors := []prometheus.Collector{
		m.ConfigLoads, m.ConfigSaves, m.SaveErrors,
		m.GroupsLoaded, m.GroupsSkipped,
		m.Reloads, m.WorldChanges,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew как New, но паникует при ошибке регистрации
func MustNew(reg prometheus.Registerer) *Metrics {
	m, err := New(reg)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Metrics) IncLoads() {
	if m != nil {
		m.ConfigLoads.Inc()
	}
}

func (m *Metrics) ObserveSave(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.SaveErrors.Inc()
		return
	}
	m.ConfigSaves.Inc()
}

func (m *Metrics) ObserveGroups(loaded, skipped int) {
	if m == nil {
		return
	}
	m.GroupsLoaded.Set(float64(loaded))
	m.GroupsSkipped.Add(float64(skipped))
}

func (m *Metrics) IncReloads() {
	if m != nil {
		m.Reloads.Inc()
	}
}

func (m *Metrics) IncWorldChange(outcome string) {
	if m != nil {
		m.WorldChanges.WithLabelValues(outcome).Inc()
	}
}
