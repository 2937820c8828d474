// Package config handles loan widget configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"loan-widget/money"
	"loan-widget/service"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the root configuration structure.
type Config struct {
	Widget  WidgetConfig  `yaml:"widget" mapstructure:"widget"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	HTTP    HTTPConfig    `yaml:"http" mapstructure:"http"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// WidgetConfig controls widget behavior and result formatting.
type WidgetConfig struct {
	// SimulatedLatency is the pause between a valid submission and the calculation.
	SimulatedLatency time.Duration `yaml:"simulated_latency" mapstructure:"simulated_latency"`

	// NoticeDuration is how long a calculation error stays visible.
	NoticeDuration time.Duration `yaml:"notice_duration" mapstructure:"notice_duration"`

	// Locale drives digit grouping, e.g. en-US.
	Locale string `yaml:"locale" mapstructure:"locale"`

	// Currency is the ISO 4217 code of the fixed display currency.
	Currency string `yaml:"currency" mapstructure:"currency"`
}

// StorageConfig selects where the last entry and the history are kept.
type StorageConfig struct {
	// Backend is one of memory, sqlite, redis.
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Key is the record key of the last entry.
	Key string `yaml:"key" mapstructure:"key"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`

	RedisAddr string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisDB   int    `yaml:"redis_db" mapstructure:"redis_db"`
}

// HTTPConfig contains API server settings.
type HTTPConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`

	// RateLimit is the number of submissions allowed per client and window.
	RateLimit  int           `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window" mapstructure:"rate_window"`

	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Widget: WidgetConfig{
			SimulatedLatency: service.DefaultSimulatedLatency,
			NoticeDuration:   service.DefaultNoticeDuration,
			Locale:           "en-US",
			Currency:         "USD",
		},
		Storage: StorageConfig{
			Backend:    BackendSQLite,
			Key:        service.DefaultStorageKey,
			SQLitePath: "~/.local/share/loan-widget/widget.db",
			RedisAddr:  "localhost:6379",
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			RateLimit:       5,
			RateWindow:      time.Minute,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Widget.SimulatedLatency < 0 {
		return fmt.Errorf("widget.simulated_latency must be >= 0")
	}
	if c.Widget.NoticeDuration <= 0 {
		return fmt.Errorf("widget.notice_duration must be > 0")
	}
	if _, err := money.NewFormatter(c.Widget.Locale, c.Widget.Currency); err != nil {
		return fmt.Errorf("widget: %w", err)
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis backend")
		}
		if c.Storage.RedisDB < 0 {
			return fmt.Errorf("storage.redis_db must be >= 0")
		}
	default:
		return fmt.Errorf("storage.backend must be one of memory, sqlite, redis (got %q)", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key is required")
	}

	if c.HTTP.RateLimit < 1 {
		return fmt.Errorf("http.rate_limit must be at least 1")
	}
	if c.HTTP.RateWindow <= 0 {
		return fmt.Errorf("http.rate_window must be > 0")
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console (got %q)", c.Logging.Format)
	}
	return nil
}
