package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/cinema-checkout/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func do(e *echo.Echo, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	req.RemoteAddr = "192.0.2.10:5555"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:        true,
		Methods:        map[string]bool{http.MethodGet: true},
		TTL:            time.Minute,
		KeyStrategy:    "route_query",
		Prefix:         "test:cache",
		MaxBodyBytes:   1 << 20,
		RespectNoCache: true,
	}
}

func TestRedisCacheHitMissBypass(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	e := echo.New()
	e.GET("/sesiones/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "calls": calls})
	}, NewRedisCache(cacheConfig(), rdb, nil))

	first := do(e, http.MethodGet, "/sesiones/7", nil)
	if got := first.Header().Get("X-Cache"); got != cacheMiss {
		t.Fatalf("first X-Cache = %q", got)
	}
	second := do(e, http.MethodGet, "/sesiones/7", nil)
	if got := second.Header().Get("X-Cache"); got != cacheHit {
		t.Fatalf("second X-Cache = %q", got)
	}
	if second.Body.String() != first.Body.String() || calls != 1 {
		t.Fatalf("cached body %q vs %q after %d calls", second.Body, first.Body, calls)
	}
	if ct := second.Header().Get(echo.HeaderContentType); ct != echo.MIMEApplicationJSON {
		t.Fatalf("cached Content-Type = %q", ct)
	}

	other := do(e, http.MethodGet, "/sesiones/8", nil)
	if got := other.Header().Get("X-Cache"); got != cacheMiss {
		t.Fatalf("other session X-Cache = %q", got)
	}

	fresh := do(e, http.MethodGet, "/sesiones/7", http.Header{"Cache-Control": {"no-cache"}})
	if got := fresh.Header().Get("X-Cache"); got != cacheBypass || calls != 3 {
		t.Fatalf("bypass X-Cache = %q calls = %d", got, calls)
	}
}

func TestRedisCacheSkipsErrors(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	e := echo.New()
	e.GET("/butacas/lista", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}, NewRedisCache(cacheConfig(), rdb, nil))

	do(e, http.MethodGet, "/butacas/lista?ids=1", nil)
	rec := do(e, http.MethodGet, "/butacas/lista?ids=1", nil)
	if rec.Header().Get("X-Cache") == cacheHit || calls != 2 {
		t.Fatalf("error response was cached (calls=%d)", calls)
	}
}

func TestRedisCacheDisabledWithoutClient(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, NewRedisCache(cacheConfig(), nil, nil))
	if rec := do(e, http.MethodGet, "/x", nil); rec.Header().Get("X-Cache") != "" {
		t.Fatal("pass-through middleware set X-Cache")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	bs, err := encodePayload(http.StatusOK, http.Header{"Content-Type": {"application/json"}}, []byte(`{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}
	status, hdr, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || hdr.Get("Content-Type") != "application/json" || string(body) != `{"a":1}` {
		t.Fatalf("decodePayload = %d %v %q %v", status, hdr, body, ok)
	}
	if _, _, _, ok := decodePayload(bs[:5]); ok {
		t.Fatal("short payload decoded")
	}
}

func rateConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		MemoryFallback: true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
}

func limitedEcho(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.POST("/reservas", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, mw)
	return e
}

func assertBucket(t *testing.T, e *echo.Echo) {
	t.Helper()
	for i := 0; i < 2; i++ {
		if rec := do(e, http.MethodPost, "/reservas", nil); rec.Code != http.StatusCreated {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}
	rec := do(e, http.MethodPost, "/reservas", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" || rec.Header().Get("X-RateLimit-Limit") != "2" {
		t.Fatalf("headers = %v", rec.Header())
	}
}

func TestTokenBucketRedis(t *testing.T) {
	mr, rdb := newRedis(t)
	assertBucket(t, limitedEcho(NewTokenBucket(rateConfig(), rdb, nil)))
	if !mr.Exists("rl:ip:192.0.2.10:route:POST /reservas") {
		t.Fatalf("bucket key missing, keys = %v", mr.Keys())
	}
}

func TestTokenBucketMemoryWithoutRedis(t *testing.T) {
	assertBucket(t, limitedEcho(NewTokenBucket(rateConfig(), nil, nil)))
}

func TestTokenBucketFallsBackWhenRedisFails(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	assertBucket(t, limitedEcho(NewTokenBucket(rateConfig(), rdb, nil)))
}

func TestTokenBucketFailsOpenWithoutFallback(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	cfg := rateConfig()
	cfg.MemoryFallback = false
	e := limitedEcho(NewTokenBucket(cfg, rdb, nil))
	for i := 0; i < 5; i++ {
		if rec := do(e, http.MethodPost, "/reservas", nil); rec.Code != http.StatusCreated {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadGateway, "upstream") })

	do(e, http.MethodGet, "/ok", nil)
	rec := do(e, http.MethodGet, "/boom", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("levels = %v, %v", entries[0].Level, entries[1].Level)
	}
	if entries[1].ContextMap()["status"] != int64(http.StatusBadGateway) {
		t.Fatalf("fields = %v", entries[1].ContextMap())
	}
}
