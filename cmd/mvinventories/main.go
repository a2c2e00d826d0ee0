package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/annel0/mvinventories/internal/config"
	"github.com/annel0/mvinventories/internal/eventbus"
	"github.com/annel0/mvinventories/internal/listener"
	"github.com/annel0/mvinventories/internal/logging"
	"github.com/annel0/mvinventories/internal/metrics"
	"github.com/annel0/mvinventories/internal/plugin"
	"github.com/annel0/mvinventories/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const hostSource = "host"

func main() {
	var (
		runtimePath = flag.String("config", "", "YAML-файл настроек хоста (по умолчанию $MVI_CONFIG)")
		dataDir     = flag.String("data", "", "Каталог данных плагина (config.yml)")
		worlds      = flag.String("worlds", "", "Миры хоста через запятую")
		metricsAddr = flag.String("metrics", "", "Адрес Prometheus /metrics, например :2112")
		showVersion = flag.Bool("version", false, "Показать версию и выйти")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("Multiverse-Inventories", plugin.Version)
		return
	}

	rt, err := config.LoadRuntime(*runtimePath)
	if err != nil {
		log.Fatalf("❌ Ошибка чтения настроек хоста: %v", err)
	}
	applyFlags(rt, *dataDir, *worlds, *metricsAddr)

	if err := logging.InitDefaultLogger("mvinventories"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	lm := logging.GetLoggerManager()
	defer lm.CloseAll()

	// === КОНФИГУРАЦИЯ ===
	fileStorage, err := storage.NewFileStorage(rt.Host.GetDataDir())
	if err != nil {
		log.Fatalf("❌ Нет доступа к каталогу данных: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNew(reg)

	hostWorlds := listener.NewStaticWorlds(rt.Host.Worlds)
	p := plugin.New(fileStorage, plugin.Options{
		Worlds:  hostWorlds,
		Logger:  logging.GetConfigLogger(),
		Metrics: m,
	})
	if err := p.Enable(); err != nil {
		logging.Error("❌ Ошибка загрузки %s: %v", fileStorage.Location(), err)
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	lm.SetDebugLevel(p.Store().GlobalDebug())
	logging.Default().SetDebugLevel(p.Store().GlobalDebug())

	// === ШИНА СОБЫТИЙ ХОСТА ===
	bus := eventbus.NewMemoryBus(rt.EventBus.GetCapacity())
	if _, err := eventbus.StartLoggingListener(bus, logging.GetComponentLogger("eventbus")); err != nil {
		log.Fatalf("❌ Ошибка подписки на шину: %v", err)
	}

	listenerLog := logging.GetListenerLogger()
	worldListener := listener.NewWorldChangeListener(hostWorlds, p, listener.LogShareHandler{Log: listenerLog}, listenerLog, m)
	if _, err := worldListener.Bind(bus); err != nil {
		log.Fatalf("❌ Ошибка подписки на шину: %v", err)
	}
	coreListener := listener.NewCoreListener(p, listenerLog, m)
	if _, err := coreListener.Bind(bus); err != nil {
		log.Fatalf("❌ Ошибка подписки на шину: %v", err)
	}
	// Подписка после слушателей: отчёт печатается, когда они уже отработали
	if _, err := subscribeReports(bus, p, lm); err != nil {
		log.Fatalf("❌ Ошибка подписки на шину: %v", err)
	}

	exporter, err := eventbus.NewMetricsExporter(bus, reg, logging.GetComponentLogger("metrics"))
	if err != nil {
		log.Fatalf("❌ Ошибка регистрации метрик шины: %v", err)
	}
	if addr := rt.Metrics.GetAddr(); addr != "" {
		exporter.StartHTTP(addr)
	} else {
		exporter.Start()
	}

	logging.Info("✅ Multiverse-Inventories %s запущен: %s, миров %d, групп %d",
		plugin.Version, fileStorage.Location(), len(hostWorlds.Worlds()), p.Groups().Len())
	logging.Info("💡 Команды: change <игрок> <из> <в>, reload, version, quit")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	lines := make(chan string)
	go readLines(os.Stdin, lines)

loop:
	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				publish(ctx, bus, eventbus.EventConfigReload, eventbus.ConfigReload{Report: eventbus.NewReport()})
				continue
			}
			logging.Info("📡 Получен сигнал %v, завершение работы...", sig)
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			cmd, err := parseCommand(line)
			if err != nil {
				logging.Warn("%v", err)
				continue
			}
			if cmd.quit {
				break loop
			}
			if cmd.eventType != "" {
				publish(ctx, bus, cmd.eventType, cmd.payload)
			}
		}
	}

	// === GRACEFUL SHUTDOWN ===
	bus.Close()
	exporter.Stop()
	if err := p.Disable(); err != nil {
		logging.Error("❌ Ошибка сохранения конфигурации: %v", err)
	}
	logging.Info("👋 Multiverse-Inventories остановлен")
}

func publish(ctx context.Context, bus eventbus.EventBus, eventType string, payload interface{}) {
	if err := bus.Publish(ctx, eventbus.NewEnvelope(hostSource, eventType, payload)); err != nil {
		logging.Error("Ошибка публикации %s: %v", eventType, err)
	}
}

// subscribeReports печатает отчёты хоста и переносит уровень отладки
// из перечитанного конфига во все логгеры
func subscribeReports(bus eventbus.EventBus, p *plugin.Plugin, lm *logging.LoggerManager) (eventbus.Subscription, error) {
	filter := eventbus.Filter{Types: []string{eventbus.EventConfigReload, eventbus.EventVersionRequest}}
	return bus.Subscribe(context.Background(), filter, func(ctx context.Context, ev *eventbus.Envelope) {
		var report *eventbus.Report
		switch payload := ev.Payload.(type) {
		case eventbus.ConfigReload:
			report = payload.Report
			level := p.Store().GlobalDebug()
			lm.SetDebugLevel(level)
			logging.Default().SetDebugLevel(level)
		case eventbus.VersionRequest:
			report = payload.Report
		}
		if report == nil {
			return
		}
		for _, line := range report.Lines() {
			fmt.Println(line)
		}
	})
}

func readLines(f *os.File, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}

// applyFlags переносит заданные флаги поверх настроек файла и окружения
func applyFlags(rt *config.Runtime, dataDir, worlds, metricsAddr string) {
	if dataDir != "" {
		rt.Host.DataDir = dataDir
	}
	if list := splitList(worlds); len(list) > 0 {
		rt.Host.Worlds = list
	}
	if metricsAddr != "" {
		rt.Metrics.Addr = metricsAddr
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
