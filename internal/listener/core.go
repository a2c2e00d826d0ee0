package listener

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/annel0/mvinventories/internal/eventbus"
	"github.com/annel0/mvinventories/internal/logging"
	"github.com/annel0/mvinventories/internal/metrics"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"
)

// ReloadedConfigName добавляется в отчёт хоста после перезагрузки
const ReloadedConfigName = "Multiverse-Inventories - config.yml"

// Plugin описывает то, что нужно CoreListener от плагина
type Plugin interface {
	Reload() error
	VersionInfo() []string
}

// CoreListener обрабатывает служебные запросы хоста: отчёт о версиях
// и перезагрузку конфигурации.
type CoreListener struct {
	plugin  Plugin
	log     *logging.Logger
	metrics *metrics.Metrics

	// diagnostics подменяется в тестах
	diagnostics func() []string
}

// NewCoreListener создаёт слушатель служебных событий
func NewCoreListener(p Plugin, log *logging.Logger, m *metrics.Metrics) *CoreListener {
	return &CoreListener{
		plugin:      p,
		log:         log,
		metrics:     m,
		diagnostics: HostDiagnostics,
	}
}

// OnVersionRequest дописывает в отчёт сведения о плагине и окружении
func (l *CoreListener) OnVersionRequest(report *eventbus.Report) {
	report.Append(l.plugin.VersionInfo()...)
	report.Append(l.diagnostics()...)
}

// OnConfigReload перечитывает конфигурацию и отмечает файл в отчёте.
// При ошибке чтения остаётся прежнее состояние, ошибка возвращается хосту.
func (l *CoreListener) OnConfigReload(report *eventbus.Report) error {
	l.metrics.IncReloads()
	if err := l.plugin.Reload(); err != nil {
		l.log.Error("Ошибка перезагрузки конфигурации: %v", err)
		return err
	}
	if report != nil {
		report.Append(ReloadedConfigName)
	}
	l.log.Info("Конфигурация перезагружена")
	return nil
}

// Bind подписывает слушатель на ConfigReload и VersionRequest
func (l *CoreListener) Bind(bus eventbus.EventBus) (eventbus.Subscription, error) {
	filter := eventbus.Filter{Types: []string{eventbus.EventConfigReload, eventbus.EventVersionRequest}}
	return bus.Subscribe(context.Background(), filter, func(ctx context.Context, ev *eventbus.Envelope) {
		switch payload := ev.Payload.(type) {
		case eventbus.ConfigReload:
			_ = l.OnConfigReload(payload.Report)
		case eventbus.VersionRequest:
			if payload.Report == nil {
				l.log.Warn("VersionRequest %s без отчёта", ev.ID)
				return
			}
			l.OnVersionRequest(payload.Report)
		default:
			l.log.Warn("Неожиданные данные события %s: %T", ev.EventType, ev.Payload)
		}
	})
}

// HostDiagnostics собирает сведения об окружении процесса.
// Недоступные сведения пропускаются.
func HostDiagnostics() []string {
	lines := []string{
		fmt.Sprintf("[Multiverse-Inventories] Go: %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	}

	if info, err := host.Info(); err == nil {
		lines = append(lines, fmt.Sprintf("[Multiverse-Inventories] Host: %s %s (%s), kernel %s",
			info.Platform, info.PlatformVersion, info.OS, info.KernelVersion))
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			lines = append(lines, fmt.Sprintf("[Multiverse-Inventories] RSS: %.1f MB", float64(mem.RSS)/1024/1024))
		}
	}
	return lines
}
