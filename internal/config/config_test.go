package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"ListenAddr", cfg.ListenAddr, ":8080"},
		{"DBPath", cfg.DBPath, "lexis.db"},
		{"TelemetryPath", cfg.TelemetryPath, "lexis.events.jsonl"},
		{"CatalogPath", cfg.CatalogPath, ""},
		{"Seed", cfg.Seed, uint64(0)},
		{"AdvanceInterval", cfg.AdvanceInterval, 30 * time.Second},
		{"SyncInterval", cfg.SyncInterval, 10 * time.Second},
		{"SyncTimeout", cfg.SyncTimeout, 3 * time.Second},
		{"PeerURL", cfg.PeerURL, ""},
		{"MaxBirthAttempts", cfg.MaxBirthAttempts, 1000},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	resetViper()

	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "listen_addr",
			envKey: "LEXIS_LISTEN_ADDR",
			envVal: "127.0.0.1:9000",
			field:  func(c Config) any { return c.ListenAddr },
			want:   "127.0.0.1:9000",
		},
		{
			name:   "peer_url",
			envKey: "LEXIS_PEER_URL",
			envVal: "http://upstream:8080",
			field:  func(c Config) any { return c.PeerURL },
			want:   "http://upstream:8080",
		},
		{
			name:   "seed",
			envKey: "LEXIS_SEED",
			envVal: "42",
			field:  func(c Config) any { return c.Seed },
			want:   uint64(42),
		},
		{
			name:   "advance_interval",
			envKey: "LEXIS_ADVANCE_INTERVAL",
			envVal: "1m30s",
			field:  func(c Config) any { return c.AdvanceInterval },
			want:   90 * time.Second,
		},
		{
			name:   "max_birth_attempts",
			envKey: "LEXIS_MAX_BIRTH_ATTEMPTS",
			envVal: "25",
			field:  func(c Config) any { return c.MaxBirthAttempts },
			want:   25,
		},
		{
			name:   "verbose",
			envKey: "LEXIS_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			viper.SetEnvPrefix("LEXIS")
			viper.AutomaticEnv()

			os.Setenv(tt.envKey, tt.envVal)
			defer os.Unsetenv(tt.envKey)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"bad duration", "sync_interval", "soon"},
		{"negative interval", "advance_interval", "-5s"},
		{"zero timeout", "sync_timeout", "0s"},
		{"negative attempts", "max_birth_attempts", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			viper.Set(tt.key, tt.val)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%v: expected error", tt.key, tt.val)
			}
		})
	}
}

func TestLoad_ZeroIntervalDisables(t *testing.T) {
	resetViper()
	viper.Set("advance_interval", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.AdvanceInterval != 0 {
		t.Errorf("AdvanceInterval = %s, want 0", cfg.AdvanceInterval)
	}
}
