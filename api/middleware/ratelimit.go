package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Modzmart2112/Tracker-sub001/config"
	"github.com/Modzmart2112/Tracker-sub001/models"
)

// callerLimits tracks one token bucket per caller identity and evicts
// callers not seen for a while.
type callerLimits struct {
	mu      sync.Mutex
	buckets map[string]*callerBucket
	rps     rate.Limit
	burst   int
}

type callerBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newCallerLimits(cfg config.RateLimitConfig) *callerLimits {
	return &callerLimits{
		buckets: make(map[string]*callerBucket),
		rps:     rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
	}
}

func (cl *callerLimits) allow(identity string) bool {
	cl.mu.Lock()
	b, ok := cl.buckets[identity]
	if !ok {
		b = &callerBucket{lim: rate.NewLimiter(cl.rps, cl.burst)}
		cl.buckets[identity] = b
	}
	b.lastSeen = time.Now()
	cl.mu.Unlock()
	return b.lim.Allow()
}

func (cl *callerLimits) evictIdle(cutoff time.Time) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	for id, b := range cl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(cl.buckets, id)
		}
	}
}

// RateLimit applies a per-caller token bucket. Every scrape job hits a third
// party's site, so the bucket is deliberately small; a rejected request gets
// a Retry-After hint sized from the refill rate.
//
// Identity is the authenticated API key when present, the client IP
// otherwise. Idle callers are evicted after an hour.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	limits := newCallerLimits(cfg)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limits.evictIdle(time.Now().Add(-time.Hour))
		}
	}()

	retryAfter := "1"
	if cfg.RequestsPerSecond > 0 {
		retryAfter = strconv.Itoa(int(math.Ceil(1 / cfg.RequestsPerSecond)))
	}

	return func(c *gin.Context) {
		if limits.allow(identityOf(c)) {
			c.Next()
			return
		}
		c.Header("Retry-After", retryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.JobResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeRateLimited,
				Message: "rate limit exceeded, retry later",
			},
		})
	}
}

// identityOf prefers the authenticated API key over the client IP, so
// distinct keys behind one NAT do not starve each other.
func identityOf(c *gin.Context) string {
	if key, ok := c.Get("api_key"); ok {
		if s, ok := key.(string); ok && s != "" {
			return s
		}
	}
	return c.ClientIP()
}
