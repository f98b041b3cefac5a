// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the feed core service.
type Config struct {
	Server struct {
		Host string `env:"SERVER_HOST,default=0.0.0.0"`
		Port int    `env:"SERVER_PORT,default=8080"`
	}

	Log struct {
		Level  string `env:"LOG_LEVEL,default=info"`
		Format string `env:"LOG_FORMAT,default=json"`
	}

	Database struct {
		// URL selects the postgres DM store when set; empty keeps the
		// in-memory store.
		URL string `env:"DATABASE_URL"`
	}

	Cache struct {
		// RedisAddr selects the redis cache backend when set.
		RedisAddr     string        `env:"REDIS_ADDR"`
		RedisPassword string        `env:"REDIS_PASSWORD"`
		RedisDB       int           `env:"REDIS_DB,default=0"`
		TTL           time.Duration `env:"FEED_CACHE_TTL,default=15s"`
		MaxEntries    int           `env:"FEED_CACHE_MAX_ENTRIES,default=0"`
	}

	RateLimit struct {
		RequestsPerSecond int `env:"RATE_LIMIT_RPS,default=50"`
		Burst             int `env:"RATE_LIMIT_BURST,default=100"`
	}

	Demo struct {
		// Seed loads the demo fixtures (profiles, follows, posts) on boot.
		Seed bool   `env:"DEMO_SEED,default=false"`
		User string `env:"DEMO_USER"`
	}
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}

// Addr returns the host:port the HTTP server binds to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
