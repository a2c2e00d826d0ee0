package config

// Setting описывает документированную настройку: путь, значение по умолчанию
// и комментарий. Default == nil означает секцию без простого значения.
type Setting struct {
	Path     string
	Default  interface{}
	Comments []string
}

// Пути настроек
const (
	PathSettings               = "settings"
	PathLocale                 = "settings.locale"
	PathDebugLevel             = "settings.debug_level"
	PathFirstRun               = "settings.first_run"
	PathUseBypass              = "settings.use_bypass"
	PathDefaultUngroupedWorlds = "settings.default_ungrouped_worlds"
	PathOptionalShares         = "shares.use_optionals"
	PathGroups                 = "groups"
)

// FileHeader заголовок файла конфигурации
const FileHeader = "# Multiverse-Inventories Settings/Groups"

var (
	SettingsBanner = Setting{
		Path:     PathSettings,
		Comments: []string{"# ===[ Multiverse Inventories Config ]==="},
	}
	Locale = Setting{
		Path:     PathLocale,
		Default:  "en",
		Comments: []string{"# This is the locale you wish to use."},
	}
	DebugLevel = Setting{
		Path:    PathDebugLevel,
		Default: 0,
		Comments: []string{
			"# Level of debugging information to display.",
			"# 0 = off, 1-3 increasing amount of debug spam.",
		},
	}
	FirstRun = Setting{
		Path:     PathFirstRun,
		Default:  true,
		Comments: []string{"# If this is true it will generate world groups for you based on MV worlds."},
	}
	UseBypass = Setting{
		Path:     PathUseBypass,
		Default:  false,
		Comments: []string{"# If this is set to true, it will enable bypass permissions (Check the wiki for more info.)"},
	}
	DefaultUngroupedWorlds = Setting{
		Path:     PathDefaultUngroupedWorlds,
		Default:  false,
		Comments: []string{"# If set to true, any world not listed in a group will automatically use the settings for the default group!"},
	}
	OptionalShares = Setting{
		Path:    PathOptionalShares,
		Default: []string{},
		Comments: []string{
			"# You must specify optional shares you wish to use here or they will be ignored.",
			"# The only built in optional share is \"economy\"",
		},
	}
	Groups = Setting{
		Path: PathGroups,
		Comments: []string{
			"# This is where you configure your world groups",
			"# example below: ",
			"#    groups:",
			"#      example_group:",
			"#        worlds:",
			"#        - world1",
			"#        - world2",
			"#        shares:",
			"#        - all",
			"# In this example, world1 and world2 will share everything sharable.",
			"# When things are shared this means they are the SAME for each world listed in the group.",
			"# Options for shares: inventory, exp, health, hunger, beds",
			"# Worlds not listed in a group will have a separate personal inventory/stats/bed UNLESS default_ungrouped_worlds is true",
		},
	}
)

// Settings все настройки в порядке применения значений по умолчанию.
// Родительские секции идут раньше вложенных.
var Settings = []Setting{
	SettingsBanner,
	Locale,
	DebugLevel,
	FirstRun,
	UseBypass,
	DefaultUngroupedWorlds,
	OptionalShares,
	Groups,
}
