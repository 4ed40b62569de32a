// Package config handles configuration loading and validation for the
// taskkeeper client.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iudanet/taskkeeper/internal/client/sync"
	"github.com/iudanet/taskkeeper/internal/models"
)

// Log formats.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds the client configuration.
type Config struct {
	Log          LogConfig     `yaml:"log"`
	DBPath       string        `yaml:"db_path"`
	RemoteDBPath string        `yaml:"remote_db_path"`
	MetricsAddr  string        `yaml:"metrics_addr"`
	Network      NetworkConfig `yaml:"network"`
	Sync         SyncConfig    `yaml:"sync"`
	Offline      bool          `yaml:"offline"`
}

// SyncConfig mirrors the sync engine tunables.
type SyncConfig struct {
	EscalationStrategy string        `yaml:"escalation_strategy"`
	MaxRetries         int           `yaml:"max_retries"`
	MaxPassRetries     int           `yaml:"max_pass_retries"`
	RetryDelay         time.Duration `yaml:"retry_delay"`
	Interval           time.Duration `yaml:"interval"`
	OperationTimeout   time.Duration `yaml:"operation_timeout"`
}

// NetworkConfig configures the reachability prober.
type NetworkConfig struct {
	ProbeInterval time.Duration `yaml:"probe_interval"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout"`
}

// LogConfig configures logging. An empty File logs to stderr.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	s := sync.DefaultConfig()
	return Config{
		DBPath:       "taskkeeper.db",
		RemoteDBPath: "taskkeeper-remote.db",
		Sync: SyncConfig{
			EscalationStrategy: s.EscalationStrategy,
			MaxRetries:         s.MaxRetries,
			MaxPassRetries:     s.MaxPassRetries,
			RetryDelay:         s.RetryDelay,
			Interval:           s.SyncInterval,
			OperationTimeout:   s.OperationTimeout,
		},
		Network: NetworkConfig{
			ProbeInterval: 15 * time.Second,
			ProbeTimeout:  5 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     FormatAuto,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads configuration from path. An empty path or a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path cannot be empty"))
	}
	if c.RemoteDBPath == "" {
		errs = append(errs, errors.New("remote_db_path cannot be empty"))
	}

	switch c.Sync.EscalationStrategy {
	case models.StrategyClientWins, models.StrategyServerWins, models.StrategyManual:
	default:
		errs = append(errs, fmt.Errorf("sync.escalation_strategy %q is not a known strategy", c.Sync.EscalationStrategy))
	}
	if err := c.SyncEngine().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sync: %w", err))
	}

	if c.Network.ProbeInterval <= 0 {
		errs = append(errs, errors.New("network.probe_interval must be positive"))
	}
	if c.Network.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("network.probe_timeout must be positive"))
	}

	switch c.Log.Format {
	case FormatAuto, FormatText, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be auto, text or json", c.Log.Format))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SyncEngine converts the sync section into the engine configuration.
func (c *Config) SyncEngine() sync.Config {
	cfg := sync.DefaultConfig()
	cfg.EscalationStrategy = c.Sync.EscalationStrategy
	cfg.MaxRetries = c.Sync.MaxRetries
	cfg.MaxPassRetries = c.Sync.MaxPassRetries
	cfg.RetryDelay = c.Sync.RetryDelay
	cfg.SyncInterval = c.Sync.Interval
	cfg.OperationTimeout = c.Sync.OperationTimeout
	return cfg
}
