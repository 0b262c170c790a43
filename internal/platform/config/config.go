// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first when present so development setups need no exported variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the Taskflow API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"PORT"      envDefault:"5000"`
	Environment string `env:"NODE_ENV"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"     envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis). Optional: in-memory fallbacks are used when empty.
	RedisURL string `env:"REDIS_URL"`

	// JWTSecret is the default signing secret. It seeds the key ring and signs cookies.
	JWTSecret string `env:"JWT_SECRET,required"`

	// Signing key rotation
	KeyRotationInterval time.Duration `env:"KEY_ROTATION_INTERVAL" envDefault:"1h"`
	KeyHistory          int           `env:"KEY_HISTORY"           envDefault:"2"`

	// TokenJanitorInterval is how often expired token rows are purged.
	TokenJanitorInterval time.Duration `env:"TOKEN_JANITOR_INTERVAL" envDefault:"10m"`

	// Request budget applied to /api per client IP
	RateLimitMax    int           `env:"RATE_LIMIT_MAX"    envDefault:"100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`

	// Cross-Origin Resource Sharing. Empty means the environment default.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env file is the normal case outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.KeyHistory < 1 {
		return nil, fmt.Errorf("config: KEY_HISTORY must be at least 1, got %d", cfg.KeyHistory)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the CORS allow-list, defaulting per environment.
func (c *Config) AllowedOrigins() []string {
	if len(c.CORSOrigins) > 0 {
		origins := make([]string, 0, len(c.CORSOrigins))
		for _, origin := range c.CORSOrigins {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		return origins
	}

	if c.IsProduction() {
		return []string{"https://todo-app-dnd.up.railway.app"}
	}
	return []string{"http://localhost:5173"}
}
