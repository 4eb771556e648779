package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix    = "TASKLIST"
	envConfigDir = "TASKLIST_CONFIG_DIR"
	fileName     = "config"
	fileType     = "yaml"
)

// Config is the complete tasklist configuration.
type Config struct {
	// DataDir is where the task database lives (default: <user config dir>/tasklist/data)
	DataDir string        `mapstructure:"data_dir" json:"data_dir" yaml:"data_dir"`
	Logging LoggingConfig `mapstructure:"logging" json:"logging" yaml:"logging"`
	TUI     TUIConfig     `mapstructure:"tui" json:"tui" yaml:"tui"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" json:"level" yaml:"level"`
	// File is a log file path. Empty means stderr for CLI commands and
	// no logging for the TUI (stderr would corrupt the alt screen).
	File string `mapstructure:"file" json:"file" yaml:"file"`
}

// TUIConfig controls the interactive list.
type TUIConfig struct {
	// Theme is "auto", "light" or "dark" (default: "auto")
	Theme string `mapstructure:"theme" json:"theme" yaml:"theme"`
	// Watch reloads the list when another process changes the database (default: true)
	Watch bool `mapstructure:"watch" json:"watch" yaml:"watch"`
	// WatchDebounceMs coalesces bursts of file events (default: 150)
	WatchDebounceMs int `mapstructure:"watch_debounce_ms" json:"watch_debounce_ms" yaml:"watch_debounce_ms"`
	// ConfirmDelete asks before deleting a row (default: false)
	ConfirmDelete bool `mapstructure:"confirm_delete" json:"confirm_delete" yaml:"confirm_delete"`
}

func (c TUIConfig) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMs) * time.Millisecond
}

// Default returns a Config with default values.
func Default() *Config {
	dataDir := ""
	if base, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(base, "tasklist", "data")
	}
	return &Config{
		DataDir: dataDir,
		Logging: LoggingConfig{
			Level: "info",
		},
		TUI: TUIConfig{
			Theme:           "auto",
			Watch:           true,
			WatchDebounceMs: 150,
		},
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("tui.theme", defaults.TUI.Theme)
	v.SetDefault("tui.watch", defaults.TUI.Watch)
	v.SetDefault("tui.watch_debounce_ms", defaults.TUI.WatchDebounceMs)
	v.SetDefault("tui.confirm_delete", defaults.TUI.ConfirmDelete)
}

// Dir returns the config directory.
//
// Priority:
// 1) TASKLIST_CONFIG_DIR
// 2) <user config dir>/tasklist
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(envConfigDir)); v != "" {
		return v, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "tasklist"), nil
}

// Load reads configuration from path (or config.yaml in Dir() when path is
// empty), applying TASKLIST_* environment overrides. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType(fileType)
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case strings.TrimSpace(path) != "" && errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch strings.ToLower(strings.TrimSpace(c.TUI.Theme)) {
	case "auto", "light", "dark":
	default:
		errs = append(errs, fmt.Errorf("tui.theme: must be auto, light or dark, got %q", c.TUI.Theme))
	}
	if c.TUI.WatchDebounceMs < 0 {
		errs = append(errs, fmt.Errorf("tui.watch_debounce_ms: must be >= 0, got %d", c.TUI.WatchDebounceMs))
	}
	return errors.Join(errs...)
}
