package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a lexis process.
// Values are populated from .lexis.yaml, LEXIS_* env vars, and CLI flags.
type Config struct {
	ListenAddr       string        `mapstructure:"listen_addr"`
	DBPath           string        `mapstructure:"db_path"`
	TelemetryPath    string        `mapstructure:"telemetry_path"`
	CatalogPath      string        `mapstructure:"catalog_path"`
	Seed             uint64        `mapstructure:"seed"`
	AdvanceInterval  time.Duration `mapstructure:"advance_interval"`
	SyncInterval     time.Duration `mapstructure:"sync_interval"`
	SyncTimeout      time.Duration `mapstructure:"sync_timeout"`
	PeerURL          string        `mapstructure:"peer_url"`
	MaxBirthAttempts int           `mapstructure:"max_birth_attempts"`
	Verbose          bool          `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("db_path", "lexis.db")
	viper.SetDefault("telemetry_path", "lexis.events.jsonl")
	viper.SetDefault("catalog_path", "")
	viper.SetDefault("seed", 0)
	viper.SetDefault("advance_interval", "30s")
	viper.SetDefault("sync_interval", "10s")
	viper.SetDefault("sync_timeout", "3s")
	viper.SetDefault("peer_url", "")
	viper.SetDefault("max_birth_attempts", 1000)
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.AdvanceInterval < 0 {
		errs = append(errs, fmt.Errorf("config: advance_interval must not be negative, got %s", c.AdvanceInterval))
	}
	if c.SyncInterval < 0 {
		errs = append(errs, fmt.Errorf("config: sync_interval must not be negative, got %s", c.SyncInterval))
	}
	if c.SyncTimeout <= 0 {
		errs = append(errs, fmt.Errorf("config: sync_timeout must be positive, got %s", c.SyncTimeout))
	}
	if c.MaxBirthAttempts < 0 {
		errs = append(errs, fmt.Errorf("config: max_birth_attempts must not be negative, got %d", c.MaxBirthAttempts))
	}
	return errors.Join(errs...)
}
