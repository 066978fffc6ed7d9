// Package config reads tally.yaml and applies environment overrides for
// process-level knobs.
package config

import (
	"fmt"
	"os"
	"time"

	env "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Ledger   LedgerConfig   `yaml:"ledger"`
	Registry RegistryConfig `yaml:"registry"`
	Retry    RetryConfig    `yaml:"retry"`
	Log      LogConfig      `yaml:"log"`
}

// LedgerConfig identifies the ledger.
type LedgerConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// RegistryConfig tunes the registry owners. Durations are strings in Go
// duration syntax, e.g. "5s".
type RegistryConfig struct {
	CallTimeout      string `yaml:"call_timeout"`
	MaxRestarts      int    `yaml:"max_restarts"`
	MailboxSize      int    `yaml:"mailbox_size"`
	JournalSnapshots bool   `yaml:"journal_snapshots"`
}

// RetryConfig bounds the caller-side backoff for transient failures.
type RetryConfig struct {
	InitialInterval string `yaml:"initial_interval"`
	MaxElapsedTime  string `yaml:"max_elapsed_time"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// envOverrides are process-level knobs that beat the file values.
type envOverrides struct {
	LogLevel    string        `env:"TALLY_LOG_LEVEL"`
	LogFormat   string        `env:"TALLY_LOG_FORMAT"`
	CallTimeout time.Duration `env:"TALLY_CALL_TIMEOUT"`
	MaxRestarts int           `env:"TALLY_MAX_RESTARTS" envDefault:"-1"`
}

// Load reads a tally.yaml file and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parsing env overrides: %w", err)
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Log.Format = o.LogFormat
	}
	if o.CallTimeout > 0 {
		c.Registry.CallTimeout = o.CallTimeout.String()
	}
	if o.MaxRestarts >= 0 {
		c.Registry.MaxRestarts = o.MaxRestarts
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default(name string) *Config {
	return &Config{
		Ledger: LedgerConfig{
			Name:     name,
			Currency: "USD",
		},
		Registry: RegistryConfig{
			CallTimeout:      "5s",
			MaxRestarts:      3,
			MailboxSize:      64,
			JournalSnapshots: true,
		},
		Retry: RetryConfig{
			InitialInterval: "50ms",
			MaxElapsedTime:  "3s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Timeout parses the configured call timeout. Zero when unset or
// malformed, so the supervisor default applies.
func (c RegistryConfig) Timeout() time.Duration { return parseDuration(c.CallTimeout) }

// Intervals parses the backoff bounds. Zeros fall back to the retry
// package defaults.
func (c RetryConfig) Intervals() (initial, maxElapsed time.Duration) {
	return parseDuration(c.InitialInterval), parseDuration(c.MaxElapsedTime)
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
