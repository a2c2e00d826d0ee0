package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/annel0/mvinventories/internal/config"
	"github.com/annel0/mvinventories/internal/group"
	"github.com/annel0/mvinventories/internal/logging"
	"github.com/annel0/mvinventories/internal/plugin"
	"github.com/annel0/mvinventories/internal/share"
	"github.com/annel0/mvinventories/internal/storage"
)

// Options параметры одной команды groupctl
type Options struct {
	Name   string
	Worlds []string
	Shares []string
	Key    string
	Value  string
}

func main() {
	var (
		dataDir = flag.String("data", "", "Каталог данных плагина (по умолчанию $MVI_DATA_DIR)")
		command = flag.String("cmd", "list", "Command: list, add, remove, set, conflicts, settings, setting")
		name    = flag.String("name", "", "Имя группы")
		worlds  = flag.String("worlds", "", "Миры через запятую")
		shares  = flag.String("shares", "", "Категории через запятую (all, inventory, hp...)")
		key     = flag.String("key", "", "Настройка для команды setting: debug_level, first_run, use_bypass, default_ungrouped_worlds, use_optionals")
		value   = flag.String("value", "", "Новое значение настройки")
		dryRun  = flag.Bool("dry-run", false, "Не записывать изменения, вывести итоговый config.yml")
		verbose = flag.Bool("v", false, "Выводить журнал загрузки конфига")
	)
	flag.Parse()

	host := config.HostConfig{DataDir: *dataDir}
	fileStorage, err := storage.NewFileStorage(host.GetDataDir())
	if err != nil {
		log.Fatalf("❌ Нет доступа к каталогу данных: %v", err)
	}

	var st storage.DocumentStorage = fileStorage
	var dry *storage.MemoryStorage
	if *dryRun {
		data, err := fileStorage.Read()
		if err != nil {
			log.Fatalf("❌ Ошибка чтения %s: %v", fileStorage.Location(), err)
		}
		dry = storage.NewMemoryStorage(data)
		st = dry
	}

	var logOut io.Writer = io.Discard
	if *verbose {
		logOut = os.Stderr
	}

	p := plugin.New(st, plugin.Options{Logger: logging.NewWriterLogger("groupctl", logOut)})
	if err := p.Enable(); err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	opts := &Options{
		Name:   *name,
		Worlds: parseStringList(*worlds),
		Shares: parseStringList(*shares),
		Key:    *key,
		Value:  *value,
	}
	if err := run(os.Stdout, p, *command, opts); err != nil {
		log.Fatalf("❌ %s failed: %v", *command, err)
	}
	if err := p.Disable(); err != nil {
		log.Fatalf("❌ Ошибка сохранения конфигурации: %v", err)
	}

	if dry != nil {
		data, _ := dry.Read()
		fmt.Println("--- dry-run: config.yml ---")
		os.Stdout.Write(data)
	}
}

// run выполняет команду над загруженным плагином
func run(w io.Writer, p *plugin.Plugin, command string, opts *Options) error {
	switch command {
	case "list":
		return listGroups(w, p)
	case "add":
		g, err := buildGroup(opts)
		if err != nil {
			return err
		}
		if err := p.AddGroup(g); err != nil {
			return err
		}
		fmt.Fprintf(w, "✅ Добавлена группа %s\n", g)
	case "set":
		g, err := buildGroup(opts)
		if err != nil {
			return err
		}
		if err := p.UpdateGroup(g); err != nil {
			return err
		}
		fmt.Fprintf(w, "✅ Группа записана: %s\n", g)
	case "remove":
		if opts.Name == "" {
			return group.ErrEmptyName
		}
		if _, ok := p.Groups().Get(opts.Name); !ok {
			fmt.Fprintf(w, "Группа %s не найдена\n", opts.Name)
			return nil
		}
		if err := p.RemoveGroup(opts.Name); err != nil {
			return err
		}
		fmt.Fprintf(w, "✅ Группа %s удалена\n", opts.Name)
	case "conflicts":
		return showConflicts(w, p)
	case "settings":
		showSettings(w, p)
	case "setting":
		if err := applySetting(p, opts.Key, opts.Value); err != nil {
			return err
		}
		fmt.Fprintf(w, "✅ %s = %s\n", opts.Key, opts.Value)
	default:
		return fmt.Errorf("unknown command %q, available: list, add, remove, set, conflicts, settings, setting", command)
	}
	return nil
}

func buildGroup(opts *Options) (*group.WorldGroupProfile, error) {
	for _, name := range opts.Shares {
		if _, ok := share.Default.Lookup(name); !ok && !share.IsAllName(name) {
			return nil, fmt.Errorf("неизвестная категория %q", name)
		}
	}
	return group.New(opts.Name, opts.Worlds, share.FromNames(opts.Shares))
}

func listGroups(w io.Writer, p *plugin.Plugin) error {
	groups := p.Groups().List()
	if len(groups) == 0 {
		fmt.Fprintln(w, "Групп нет")
		return nil
	}
	for _, g := range groups {
		fmt.Fprintf(w, "%-16s worlds=%s shares=%s\n", g.Name(), strings.Join(g.Worlds(), ","), g.Shares())
	}
	return nil
}

func showConflicts(w io.Writer, p *plugin.Plugin) error {
	conflicts := p.Groups().Conflicts()
	if len(conflicts) == 0 {
		fmt.Fprintln(w, "Конфликтов нет")
		return nil
	}
	worlds := make([]string, 0, len(conflicts))
	for world := range conflicts {
		worlds = append(worlds, world)
	}
	sort.Strings(worlds)
	for _, world := range worlds {
		fmt.Fprintf(w, "⚠️  %s: %s\n", world, strings.Join(conflicts[world], ", "))
	}
	return nil
}

func showSettings(w io.Writer, p *plugin.Plugin) {
	st := p.Store()
	fmt.Fprintf(w, "locale=%s\n", st.Locale())
	fmt.Fprintf(w, "debug_level=%d\n", st.GlobalDebug())
	fmt.Fprintf(w, "first_run=%t\n", st.IsFirstRun())
	fmt.Fprintf(w, "use_bypass=%t\n", st.IsUsingBypass())
	fmt.Fprintf(w, "default_ungrouped_worlds=%t\n", st.IsDefaultingUngroupedWorlds())
	fmt.Fprintf(w, "use_optionals=%s\n", st.OptionalShares())
}

// applySetting меняет одну настройку в документе; запись происходит в Disable
func applySetting(p *plugin.Plugin, key, value string) error {
	st := p.Store()
	switch key {
	case "debug_level":
		level, err := strconv.Atoi(value)
		if err != nil || level < 0 || level > logging.MaxDebugLevel {
			return fmt.Errorf("debug_level: ожидается число 0..%d, получено %q", logging.MaxDebugLevel, value)
		}
		return st.SetGlobalDebug(level)
	case "use_optionals":
		names := parseStringList(value)
		for _, name := range names {
			if s, ok := share.Default.Lookup(name); !ok || !s.Optional {
				return fmt.Errorf("use_optionals: %q не является опциональной категорией", name)
			}
		}
		st.SetOptionalShares(share.FromNames(names))
		return nil
	}

	flagValue, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s: ожидается true или false, получено %q", key, value)
	}
	switch key {
	case "first_run":
		return st.SetFirstRun(flagValue)
	case "use_bypass":
		return st.SetUsingBypass(flagValue)
	case "default_ungrouped_worlds":
		return st.SetDefaultingUngroupedWorlds(flagValue)
	}
	return fmt.Errorf("неизвестная настройка %q", key)
}

// parseStringList разбирает строку через запятую
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
