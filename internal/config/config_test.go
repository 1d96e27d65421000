package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PAGE_SIZE", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")

	cfg := Load()
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("want sqlite driver, got %q", cfg.DBDriver)
	}
	if cfg.PageSize != 5 {
		t.Fatalf("want page size 5, got %d", cfg.PageSize)
	}
	if cfg.AccessTTL != 30*time.Minute {
		t.Fatalf("want 30m access ttl, got %s", cfg.AccessTTL)
	}
	if string(cfg.JWTSecret) != "test-secret" {
		t.Fatalf("secret not read from env")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("PAGE_SIZE", "-3")
	t.Setenv("REFRESH_TOKEN_TTL", "soon")

	cfg := Load()
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("unknown driver should fall back to sqlite, got %q", cfg.DBDriver)
	}
	if cfg.PageSize != 5 {
		t.Fatalf("bad page size should fall back, got %d", cfg.PageSize)
	}
	if cfg.RefreshTTL != 24*time.Hour {
		t.Fatalf("bad ttl should fall back, got %s", cfg.RefreshTTL)
	}
	if len(cfg.JWTSecret) != 32 {
		t.Fatalf("expected generated 32-byte secret, got %d bytes", len(cfg.JWTSecret))
	}
}
