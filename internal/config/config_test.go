package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "DATABASE_URL", "REDIS_URL", "AUTH_REQUIRED", "STATUS_FOLLOWS_COLUMN", "API_RATE_LIMIT", "API_RATE_WINDOW_SECONDS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.AppPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.AppPort)
	}
	if cfg.DatabaseURL != "" || cfg.RedisURL != "" {
		t.Fatalf("expected empty store urls, got %q %q", cfg.DatabaseURL, cfg.RedisURL)
	}
	if cfg.StatusFollowsColumn {
		t.Fatalf("status must be decoupled from column by default")
	}
	if cfg.APIRateLimit != 120 || cfg.APIRateWindow != time.Minute {
		t.Fatalf("unexpected rate limit defaults: %d/%s", cfg.APIRateLimit, cfg.APIRateWindow)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STATUS_FOLLOWS_COLUMN", "true")
	t.Setenv("API_RATE_LIMIT", "-5")
	t.Setenv("API_RATE_WINDOW_SECONDS", "10")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()
	if cfg.AppPort != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.AppPort)
	}
	if !cfg.StatusFollowsColumn || !cfg.AuthRequired {
		t.Fatalf("expected boolean flags to be set: %+v", cfg)
	}
	if cfg.APIRateLimit != 120 {
		t.Fatalf("negative limit must fall back to default, got %d", cfg.APIRateLimit)
	}
	if cfg.APIRateWindow != 10*time.Second {
		t.Fatalf("expected 10s window, got %s", cfg.APIRateWindow)
	}
}
