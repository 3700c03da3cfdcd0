// Package config loads the daemon configuration from the environment.
// All variables carry the HAUSLIST_ prefix, e.g. HAUSLIST_DB_PATH.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "hauslist"

// Config is the full daemon configuration.
type Config struct {
	// DBPath is where the SQLite database lives. Parent directories are
	// created on startup.
	DBPath string `envconfig:"DB_PATH" default:"./data/hauslist.db"`

	// HTTPAddr is the listen address for the health and metrics endpoints.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// DebounceWindow is how long change-event bursts coalesce before a
	// reload. Shorter means fresher data, longer means fewer store reads.
	DebounceWindow time.Duration `envconfig:"DEBOUNCE_WINDOW" default:"200ms"`

	// JWTSecret signs session tokens.
	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`

	// TokenTTL is how long session tokens stay valid.
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// ExcludedCategories names product categories exempt from per-payer
	// billing totals.
	ExcludedCategories []string `envconfig:"EXCLUDED_CATEGORIES" default:"Extra"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DebounceWindow <= 0 {
		return Config{}, fmt.Errorf("debounce window must be positive, got %s", cfg.DebounceWindow)
	}
	return cfg, nil
}
