// Package config loads the runtime settings of primefan from the
// environment. The partition itself is fixed at compile time and is not
// configurable here.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/ridge/fanout/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Logging LogConfig
	Drain   DrainConfig
	Metrics MetricsConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"PRIMEFAN_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"PRIMEFAN_LOG_DEV" default:"false"`
}

// DrainConfig holds output forwarding configuration.
type DrainConfig struct {
	Grace time.Duration `envconfig:"PRIMEFAN_DRAIN_GRACE" default:"2s"`
}

// MetricsConfig holds metrics configuration. An empty File disables the
// metrics dump.
type MetricsConfig struct {
	File string `envconfig:"PRIMEFAN_METRICS_FILE" default:""`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Drain: DrainConfig{
			Grace: 2 * time.Second,
		},
	}
}

// Logger returns the logger configuration derived from cfg.
func (cfg *Config) Logger() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.Development = cfg.Logging.Development
	return lc
}
