package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GOLDPLAN"

// Env holds the settings that can be overridden from the environment.
// Keys are derived from field names (User becomes GOLDPLAN_USER) so that
// unprefixed variables such as USER are never consulted.
type Env struct {
	User        string        `split_words:"true"`
	DataDir     string        `split_words:"true"`
	LogLevel    string        `split_words:"true"`
	LogFormat   string        `split_words:"true"`
	FeedTimeout time.Duration `split_words:"true"`
	Locale      string        `split_words:"true"`
}

// ApplyEnv overlays GOLDPLAN_* environment variables on cfg. Unset
// variables leave the file values alone.
func ApplyEnv(cfg *Config) error {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	if env.User != "" {
		cfg.General.User = env.User
	}
	if env.DataDir != "" {
		cfg.General.DataDir = env.DataDir
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Logging.Format = env.LogFormat
	}
	if env.FeedTimeout > 0 {
		cfg.Feed.TimeoutSec = int(env.FeedTimeout / time.Second)
	}
	if env.Locale != "" {
		cfg.General.Locale = env.Locale
	}
	return nil
}
