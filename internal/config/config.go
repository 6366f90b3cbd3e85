// Package config loads goldplan settings from a TOML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/goldplan/internal/feed"
	"github.com/theirongolddev/goldplan/internal/forecast"
	"github.com/theirongolddev/goldplan/internal/pipeline"
)

// Config holds all goldplan configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Feed       FeedConfig       `toml:"feed"`
	Sampling   SamplingConfig   `toml:"sampling"`
	Estimator  forecast.Tables  `toml:"estimator"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Logging    LoggingConfig    `toml:"logging"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir string `toml:"data_dir,omitempty"`
	User    string `toml:"user"`
	Locale  string `toml:"locale"` // en or ru number formatting
}

// FeedConfig holds price source settings.
type FeedConfig struct {
	PrimaryURL       string `toml:"primary_url"`
	FallbackURL      string `toml:"fallback_url"`
	TimeoutSec       int    `toml:"timeout_sec"`
	CacheMaxAgeHours int    `toml:"cache_max_age_hours"`
	ChromePath       string `toml:"chrome_path,omitempty"`
}

// SamplingConfig holds the monthly sampling rule.
type SamplingConfig struct {
	DayPriority []int `toml:"day_priority"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds the background refresher settings.
type DaemonConfig struct {
	Addr           string   `toml:"addr"`
	IntervalSec    int      `toml:"interval_sec"`
	EventsBuffer   int      `toml:"events_buffer"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			User:   "local",
			Locale: "en",
		},
		Feed: FeedConfig{
			PrimaryURL:       feed.DefaultStooqURL,
			FallbackURL:      feed.DefaultInvestingURL,
			TimeoutSec:       int(feed.DefaultTimeout / time.Second),
			CacheMaxAgeHours: 24,
		},
		Sampling: SamplingConfig{
			DayPriority: append([]int(nil), pipeline.DefaultDayPriority...),
		},
		Estimator: forecast.DefaultTables(),
		Appearance: AppearanceConfig{
			Theme: "bullion",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSec:  6 * 60 * 60,
			EventsBuffer: 200,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "goldplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "goldplan")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DefaultDataDir returns the XDG-compliant data directory.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "goldplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "goldplan")
}

// CacheDir returns the XDG-compliant cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "goldplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "goldplan")
}

// PriceCachePath returns the SQLite price cache location.
func PriceCachePath() string {
	return filepath.Join(CacheDir(), "prices.db")
}

// Load reads the config file, returning defaults if it doesn't exist, and
// applies environment overrides.
func Load() (Config, error) {
	cfg, err := LoadFile(ConfigPath())
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads a config file over the defaults. A missing file yields the
// defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(ConfigPath(), cfg)
}

// SaveFile writes the config to path.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// DataDir returns the configured data directory or the XDG default.
func (c Config) DataDir() string {
	if c.General.DataDir != "" {
		return c.General.DataDir
	}
	return DefaultDataDir()
}

// PlansDir returns where per-user plan files live.
func (c Config) PlansDir() string {
	return filepath.Join(c.DataDir(), "plans")
}

// FeedTimeout returns the per-fetch timeout.
func (c Config) FeedTimeout() time.Duration {
	if c.Feed.TimeoutSec <= 0 {
		return feed.DefaultTimeout
	}
	return time.Duration(c.Feed.TimeoutSec) * time.Second
}

// CacheMaxAge returns how long a cached price history stays fresh.
func (c Config) CacheMaxAge() time.Duration {
	return time.Duration(c.Feed.CacheMaxAgeHours) * time.Hour
}

// DaemonInterval returns the refresh period of the daemon.
func (c Config) DaemonInterval() time.Duration {
	if c.Daemon.IntervalSec <= 0 {
		return time.Hour
	}
	return time.Duration(c.Daemon.IntervalSec) * time.Second
}

// EstimatorTables returns the estimator thresholds, filling tables the file
// left empty from the defaults.
func (c Config) EstimatorTables() forecast.Tables {
	t := c.Estimator
	def := forecast.DefaultTables()
	if len(t.Bands) == 0 {
		t.Bands = def.Bands
	}
	if len(t.Ceilings) == 0 {
		t.Ceilings = def.Ceilings
	}
	if t.NoHorizonYears <= 0 {
		t.NoHorizonYears = def.NoHorizonYears
	}
	if t.HistoryYears <= 0 {
		t.HistoryYears = def.HistoryYears
	}
	return t
}

// DayPriority returns the configured sampling days, or nil for the default.
func (c Config) DayPriority() []int {
	if len(c.Sampling.DayPriority) == 0 {
		return nil
	}
	return c.Sampling.DayPriority
}
