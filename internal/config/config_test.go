package config

import (
	"testing"
	"time"
)

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	if !cfg.Enabled {
		t.Fatal("cache should default to enabled")
	}
	if !cfg.Methods["GET"] || cfg.Methods["POST"] {
		t.Fatalf("methods = %v, want GET only", cfg.Methods)
	}
	if cfg.TTL != 30*time.Second {
		t.Fatalf("ttl = %v", cfg.TTL)
	}
	if cfg.KeyStrategy != "route_query" {
		t.Fatalf("key strategy = %q", cfg.KeyStrategy)
	}
}

func TestLoadCacheConfigOverrides(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "2m")
	cfg := LoadCacheConfig()
	if cfg.Enabled {
		t.Fatal("CACHE_ENABLED=false ignored")
	}
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] {
		t.Fatalf("methods = %v", cfg.Methods)
	}
	if cfg.TTL != 2*time.Minute {
		t.Fatalf("ttl = %v", cfg.TTL)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "30s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 || cfg.RefillTokens != 1 {
		t.Fatalf("clamped capacity/refill = %d/%d", cfg.Capacity, cfg.RefillTokens)
	}
	// TTL is raised to cover several refill intervals.
	if cfg.TTL != 5*cfg.RefillInterval {
		t.Fatalf("ttl = %v, want %v", cfg.TTL, 5*cfg.RefillInterval)
	}
}

func TestParseMethods(t *testing.T) {
	m := parseMethods(" get ,POST,, ")
	if len(m) != 2 || !m["GET"] || !m["POST"] {
		t.Fatalf("parsed = %v", m)
	}
}
