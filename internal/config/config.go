// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration
type Config struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`

	// StorageType selects the durable backend: "memory" or "redis"
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`

	LobbyTimeout    time.Duration `env:"LOBBY_TIMEOUT" envDefault:"30m"`
	LobbyWarnWindow time.Duration `env:"LOBBY_WARN_WINDOW" envDefault:"5m"`

	MatchWarnThreshold    time.Duration `env:"MATCH_WARN_THRESHOLD" envDefault:"300s"`
	MatchTimeoutThreshold time.Duration `env:"MATCH_TIMEOUT_THRESHOLD" envDefault:"600s"`
	MatchEndGraceDelay    time.Duration `env:"MATCH_END_GRACE_DELAY" envDefault:"10s"`

	LobbySweepInterval time.Duration `env:"LOBBY_SWEEP_INTERVAL" envDefault:"10s"`
	MatchTickInterval  time.Duration `env:"MATCH_TICK_INTERVAL" envDefault:"15s"`
}

// Load parses the configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.StorageType != "memory" && cfg.StorageType != "redis" {
		return Config{}, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
	if cfg.StorageType == "redis" && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
	}
	return cfg, nil
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
