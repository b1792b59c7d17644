package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/basket/tgt/internal/otel"
)

// AppConfig holds the settings that shape layout and pacing.
type AppConfig struct {
	RenderTickMillis        int   `yaml:"render_tick_millis"`
	ChatListWidthPercent    int   `yaml:"chat_list_width_percent"`
	ChatListMinWidth        int   `yaml:"chat_list_min_width"`
	SmallAreaWidthThreshold int   `yaml:"small_area_width_threshold"`
	PromptMinHeight         int   `yaml:"prompt_min_height"`
	HistoryPageSize         int32  `yaml:"history_page_size"`
	SearchPageSize          int32  `yaml:"search_page_size"`
	ResyncCron              string `yaml:"resync_cron"`
}

// KeymapConfig maps an action name (as in internal/actionbus.Kind) to the
// key sequence that triggers it. Unset actions fall back to the built-in
// defaults in DefaultKeymap.
type KeymapConfig map[string]string

// LoggerConfig controls the rotating file writer.
type LoggerConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// ThemeConfig names the active color theme and any user overrides. Named
// themes are resolved by internal/ui/theme.go; Overrides lets a user tweak
// individual roles (e.g. "unread_badge") without forking a whole theme.
type ThemeConfig struct {
	Name      string            `yaml:"name"`
	Overrides map[string]string `yaml:"overrides,omitempty"`
}

// TelegramConfig holds the credentials needed to create the native client
// (api_id/api_hash/database_directory are tdlib parameters carried
// through unchanged).
type TelegramConfig struct {
	APIID       int32  `yaml:"api_id"`
	APIHash     string `yaml:"api_hash"`
	Phone       string `yaml:"phone,omitempty"`
	DatabaseDir string `yaml:"database_dir"`
	UseTestDC   bool   `yaml:"use_test_dc"`
}

// Config is the union of this system's five logical config domains.
type Config struct {
	HomeDir string `yaml:"-"`

	App      AppConfig      `yaml:"app"`
	Keymap   KeymapConfig   `yaml:"keymap"`
	Logger   LoggerConfig   `yaml:"logger"`
	Theme    ThemeConfig    `yaml:"theme"`
	Telegram TelegramConfig `yaml:"telegram"`
	Otel     otel.Config    `yaml:"otel"`
}

// ConfigPath returns the path to config.yaml within the given home dir.
func ConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}

func defaultConfig() Config {
	return Config{
		App: AppConfig{
			RenderTickMillis:        250,
			ChatListWidthPercent:    30,
			ChatListMinWidth:        20,
			SmallAreaWidthThreshold: 80,
			PromptMinHeight:         3,
			HistoryPageSize:         50,
			SearchPageSize:          20,
			ResyncCron:              "*/5 * * * *",
		},
		Keymap: DefaultKeymap(),
		Logger: LoggerConfig{
			Level:      "info",
			File:       "tgt.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Theme: ThemeConfig{Name: "default"},
		Telegram: TelegramConfig{
			DatabaseDir: "db",
		},
		Otel: otel.Config{
			Enabled:     false,
			Exporter:    "none",
			ServiceName: "tgt",
			SampleRate:  1.0,
		},
	}
}

// HomeDir resolves the config/state directory following the priority
// chain: TGT_CONFIG_HOME overrides everything, then XDG_CONFIG_HOME/tgt,
// then HOME/.config/tgt.
func HomeDir() string {
	if override := os.Getenv("TGT_CONFIG_HOME"); override != "" {
		return override
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tgt")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".config", "tgt")
}

// Load reads config.yaml from HomeDir, applying defaults, environment
// overrides, and normalization in that order. A missing config.yaml is not
// an error — defaults plus env vars can fully drive a headless run.
func Load() (Config, error) {
	cfg := defaultConfig()
	cfg.HomeDir = HomeDir()

	if err := os.MkdirAll(cfg.HomeDir, 0o755); err != nil {
		return cfg, fmt.Errorf("create config home: %w", err)
	}

	data, err := os.ReadFile(ConfigPath(cfg.HomeDir))
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config.yaml: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config.yaml: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	normalize(&cfg)
	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.App.RenderTickMillis <= 0 {
		cfg.App.RenderTickMillis = 250
	}
	if cfg.App.ChatListWidthPercent <= 0 {
		cfg.App.ChatListWidthPercent = 30
	}
	if cfg.App.ChatListMinWidth <= 0 {
		cfg.App.ChatListMinWidth = 20
	}
	if cfg.App.HistoryPageSize <= 0 {
		cfg.App.HistoryPageSize = 50
	}
	if cfg.App.ResyncCron == "" {
		cfg.App.ResyncCron = "*/5 * * * *"
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.File == "" {
		cfg.Logger.File = "tgt.log"
	}
	if cfg.Theme.Name == "" {
		cfg.Theme.Name = "default"
	}
	if cfg.Keymap == nil {
		cfg.Keymap = DefaultKeymap()
	} else {
		for action, key := range DefaultKeymap() {
			if _, ok := cfg.Keymap[action]; !ok {
				cfg.Keymap[action] = key
			}
		}
	}
	if cfg.Telegram.DatabaseDir == "" {
		cfg.Telegram.DatabaseDir = "db"
	}
}

// applyEnvOverrides layers environment variables over the loaded config:
// API_ID and API_HASH carry Telegram credentials, RUST_LOG carries the
// log-verbosity compatibility knob the original binary reads under the
// same name.
func applyEnvOverrides(cfg *Config) {
	if raw := os.Getenv("API_ID"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
			cfg.Telegram.APIID = int32(v)
		}
	}
	if raw := os.Getenv("API_HASH"); raw != "" {
		cfg.Telegram.APIHash = raw
	}
	if raw := os.Getenv("RUST_LOG"); raw != "" {
		cfg.Logger.Level = raw
	}
}
