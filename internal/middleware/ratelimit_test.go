package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"moviweb/internal/config"
)

func testRateLimitConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour, // no refill during the test
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
}

func newLimitedServer(t *testing.T, cfg config.RateLimitConfig) (*echo.Echo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	return e, mr
}

func pingAs(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if ip != "" {
		req.Header.Set(echo.HeaderXRealIP, ip)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucketExhaustion(t *testing.T) {
	e, _ := newLimitedServer(t, testRateLimitConfig())

	for i := 0; i < 2; i++ {
		if rec := pingAs(e, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, rec.Code)
		}
	}
	rec := pingAs(e, "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("Retry-After missing on 429")
	}
	if rec.Header().Get("X-RateLimit-Limit") != "2" {
		t.Fatalf("X-RateLimit-Limit = %q", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestTokenBucketPerClient(t *testing.T) {
	e, _ := newLimitedServer(t, testRateLimitConfig())

	pingAs(e, "10.0.0.1")
	pingAs(e, "10.0.0.1")
	if rec := pingAs(e, "10.0.0.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("exhausted client: %d", rec.Code)
	}
	// A different client IP has its own bucket.
	if rec := pingAs(e, "10.0.0.2"); rec.Code != http.StatusOK {
		t.Fatalf("fresh client: %d", rec.Code)
	}
}

func TestTokenBucketRefill(t *testing.T) {
	cfg := testRateLimitConfig()
	cfg.RefillInterval = 100 * time.Millisecond
	e, _ := newLimitedServer(t, cfg)

	pingAs(e, "10.0.0.1")
	pingAs(e, "10.0.0.1")
	if rec := pingAs(e, "10.0.0.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("exhausted: %d", rec.Code)
	}
	// Refill timing comes from the wall-clock timestamp passed to the
	// script, so real time has to pass.
	time.Sleep(150 * time.Millisecond)
	if rec := pingAs(e, "10.0.0.1"); rec.Code != http.StatusOK {
		t.Fatalf("after refill: %d", rec.Code)
	}
}

func TestTokenBucketFailsOpen(t *testing.T) {
	e, mr := newLimitedServer(t, testRateLimitConfig())
	mr.Close()
	if rec := pingAs(e, "10.0.0.1"); rec.Code != http.StatusOK {
		t.Fatalf("redis down: status %d, want 200", rec.Code)
	}
}

func TestTokenBucketDisabled(t *testing.T) {
	cfg := testRateLimitConfig()
	cfg.Enabled = false
	e, _ := newLimitedServer(t, cfg)
	for i := 0; i < 10; i++ {
		if rec := pingAs(e, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("disabled limiter blocked request %d", i+1)
		}
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/ping")

	cfg := testRateLimitConfig()
	if got := buildRateKey(cfg, c); got != "rl:ip:10.0.0.1:route:GET /ping" {
		t.Fatalf("ip_route key = %q", got)
	}
	cfg.KeyStrategy = "ip"
	if got := buildRateKey(cfg, c); got != "rl:ip:10.0.0.1" {
		t.Fatalf("ip key = %q", got)
	}
	cfg.KeyStrategy = "route"
	if got := buildRateKey(cfg, c); got != "rl:route:GET /ping" {
		t.Fatalf("route key = %q", got)
	}
}
