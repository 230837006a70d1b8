package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "off")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := LoadRateLimitConfig()
	want := RateLimitConfig{
		Enabled:        false,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: 2 * time.Second,
		TTL:            10 * time.Second,
		Prefix:         "rl:auth",
	}
	if rl != want {
		t.Errorf("got %+v\nwant %+v", rl, want)
	}
}

func TestLoadSQLite(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "not-a-number")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()
	if cfg.DB.Driver != "sqlite" || cfg.DB.Path != "/tmp/x.db" {
		t.Errorf("db = %+v", cfg.DB)
	}
	if cfg.AccessTTLMin != 60 {
		t.Errorf("ttl = %d, want default 60", cfg.AccessTTLMin)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
}
