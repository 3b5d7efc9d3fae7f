package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppName names the config and data directories
const AppName = "pmdash"

// EnvPrefix is prepended to environment overrides, e.g. PMDASH_STORAGE_ENABLED
const EnvPrefix = "PMDASH"

// Config represents the complete pmdash configuration
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Seed    SeedConfig    `mapstructure:"seed"`
	Logging LoggingConfig `mapstructure:"logging"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// StorageConfig controls SQLite snapshot persistence
type StorageConfig struct {
	// Enabled turns persistence on. When false the workspace lives only in memory.
	Enabled bool `mapstructure:"enabled"`
	// Path is the database file (default: {DataDir}/pmdash.db)
	Path string `mapstructure:"path"`
	// AutosaveSchedule is a cron spec for periodic saves; empty disables autosave
	AutosaveSchedule string `mapstructure:"autosave_schedule"`
}

// SeedConfig controls the demo workspace generated at startup
type SeedConfig struct {
	// Enabled generates mock data when no saved workspace is loaded
	Enabled bool `mapstructure:"enabled"`
	// RandomSeed makes the demo data reproducible; 0 picks a random seed
	RandomSeed uint64 `mapstructure:"random_seed"`
}

// LoggingConfig controls the debug log
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
	// Dir receives debug.log while the TUI runs (default: DataDir)
	Dir string `mapstructure:"dir"`
}

// WatchConfig controls the watch command
type WatchConfig struct {
	// Pattern is a doublestar glob matched against paths relative to the watched directory
	Pattern string `mapstructure:"pattern"`
	// DebounceMs coalesces bursts of writes to the same file
	DebounceMs int `mapstructure:"debounce_ms"`
}

// Debounce returns the watch debounce as a duration
func (c WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Enabled:          false,
			Path:             "",
			AutosaveSchedule: "@every 1m",
		},
		Seed: SeedConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Pattern:    "**/*.csv",
			DebounceMs: 500,
		},
	}
}

// SetDefaults registers defaults and environment overrides on v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("storage.enabled", defaults.Storage.Enabled)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("storage.autosave_schedule", defaults.Storage.AutosaveSchedule)

	v.SetDefault("seed.enabled", defaults.Seed.Enabled)
	v.SetDefault("seed.random_seed", defaults.Seed.RandomSeed)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.dir", defaults.Logging.Dir)

	v.SetDefault("watch.pattern", defaults.Watch.Pattern)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadFile reads the config file at path, or ConfigFile() when path is
// empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}
	v.SetConfigFile(ConfigFile())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load unmarshals v into a Config and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// DatabasePath returns the configured database file or the default location
func (c *Config) DatabasePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(DataDir(), AppName+".db")
}

// LogDir returns the configured log directory or the data directory
func (c *Config) LogDir() string {
	if c.Logging.Dir != "" {
		return c.Logging.Dir
	}
	return DataDir()
}

// ConfigDir returns the configuration directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigFile returns the default config file path
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns the directory holding the database and logs
func DataDir() string {
	// Use XDG data directory or fallback to home directory
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, ".local", "share", AppName)
}
