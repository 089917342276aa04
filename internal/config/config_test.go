package config

import (
	"os"
	"testing"
	"time"
)

var managedEnv = []string{
	"APP_ENV", "VERSION",
	"HTTP_PORT", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
	"PG_DSN", "PG_MAX_CONNS", "PG_MIN_CONNS",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_URL", "REDIS_DEFAULT_TTL",
}

// cleanEnv unsets every variable Load reads and restores them afterwards.
// cleanenv treats a set-but-empty variable as a value, so t.Setenv(k, "") is not enough.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedEnv {
		if v, ok := os.LookupEnv(k); ok {
			k, v := k, v
			t.Cleanup(func() { os.Setenv(k, v) })
		} else {
			k := k
			t.Cleanup(func() { os.Unsetenv(k) })
		}
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	cleanEnv(t)
	os.Setenv("PG_DSN", "postgres://u:p@localhost:5432/tasks")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != "8080" {
		t.Fatalf("port = %q", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeout.Duration() != 10*time.Second {
		t.Fatalf("read timeout = %v", cfg.HTTP.ReadTimeout.Duration())
	}
	if cfg.HTTP.IdleTimeout.Duration() != time.Minute {
		t.Fatalf("idle timeout = %v", cfg.HTTP.IdleTimeout.Duration())
	}
	if cfg.PG.MaxConns != 10 || cfg.PG.MinConns != 2 {
		t.Fatalf("pool = %d/%d", cfg.PG.MinConns, cfg.PG.MaxConns)
	}
	if cfg.Redis.Enabled() {
		t.Fatal("redis should be disabled without REDIS_ADDR/REDIS_URL")
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	cleanEnv(t)
	if _, err := Load(); err == nil {
		t.Fatal("expected error without PG_DSN")
	}
}

func TestLoadRedisURLAndBareSeconds(t *testing.T) {
	cleanEnv(t)
	os.Setenv("PG_DSN", "postgres://u:p@localhost:5432/tasks")
	os.Setenv("REDIS_URL", "redis://default:pw@redis.internal:6379/1")
	os.Setenv("REDIS_DEFAULT_TTL", "30")
	os.Setenv("HTTP_WRITE_TIMEOUT", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Redis.Enabled() || cfg.Redis.Addr != "redis.internal:6379" || cfg.Redis.Password != "pw" || cfg.Redis.DB != 1 {
		t.Fatalf("redis = %+v", cfg.Redis)
	}
	if cfg.Redis.DefaultTTL.Duration() != 30*time.Second {
		t.Fatalf("ttl = %v", cfg.Redis.DefaultTTL.Duration())
	}
	if cfg.HTTP.WriteTimeout.Duration() != 5*time.Minute {
		t.Fatalf("write timeout = %v", cfg.HTTP.WriteTimeout.Duration())
	}
}

func TestLoadRejectsBadPool(t *testing.T) {
	cleanEnv(t)
	os.Setenv("PG_DSN", "postgres://u:p@localhost:5432/tasks")
	os.Setenv("PG_MAX_CONNS", "2")
	os.Setenv("PG_MIN_CONNS", "5")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when min conns exceed max conns")
	}
}
