package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Modzmart2112/Tracker-sub001/config"
)

func limitedRouter(cfg config.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(cfg))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRateLimit_BurstExhaustion(t *testing.T) {
	r := limitedRouter(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2})

	call := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		return w
	}

	for i := 0; i < 2; i++ {
		if w := call(); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 within burst", i+1, w.Code)
		}
	}

	w := call()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 after burst exhausted", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want \"1\"", got)
	}
}

func TestRateLimit_SeparateIdentities(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// Simulate the auth middleware tagging each request with its key.
	r.Use(func(c *gin.Context) {
		c.Set("api_key", c.GetHeader("X-API-Key"))
	})
	r.Use(RateLimit(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	call := func(key string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-API-Key", key)
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := call("key-a"); code != http.StatusOK {
		t.Fatalf("first key-a request: %d", code)
	}
	if code := call("key-a"); code != http.StatusTooManyRequests {
		t.Fatalf("second key-a request = %d, want 429", code)
	}
	// A different key has its own untouched bucket.
	if code := call("key-b"); code != http.StatusOK {
		t.Errorf("key-b request = %d, want 200", code)
	}
}

func TestCallerLimits_EvictIdle(t *testing.T) {
	cl := newCallerLimits(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	cl.allow("stale")
	cl.allow("fresh")

	cl.mu.Lock()
	cl.buckets["stale"].lastSeen = time.Now().Add(-2 * time.Hour)
	cl.mu.Unlock()

	cl.evictIdle(time.Now().Add(-time.Hour))

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if _, ok := cl.buckets["stale"]; ok {
		t.Error("stale bucket not evicted")
	}
	if _, ok := cl.buckets["fresh"]; !ok {
		t.Error("fresh bucket wrongly evicted")
	}
}
