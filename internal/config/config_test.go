package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Cache.TTL != 15*time.Second {
		t.Fatalf("expected 15s cache TTL, got %s", cfg.Cache.TTL)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FEED_CACHE_TTL", "30s")
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("DEMO_SEED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected debug level, got %s", cfg.Log.Level)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Fatalf("expected 30s TTL, got %s", cfg.Cache.TTL)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 {
		t.Fatalf("expected 5 rps, got %d", cfg.RateLimit.RequestsPerSecond)
	}
	if !cfg.Demo.Seed {
		t.Fatal("expected demo seeding enabled")
	}
}
