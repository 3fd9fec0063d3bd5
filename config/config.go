package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Enrich    EnrichConfig
	Webhook   WebhookConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls browser session acquisition.
type BrowserConfig struct {
	// RemoteWS is an optional remote browser WebSocket endpoint
	// (e.g. a browserless pool). When set, sessions are borrowed from it
	// and disconnected on release instead of closed.
	RemoteWS string

	// RemoteToken is the access token appended to RemoteWS, if any.
	RemoteToken string

	// Headless controls whether a locally launched browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path for local launches.
	BrowserBin string

	// UserAgents is the rotation pool applied per session.
	UserAgents []string

	// ViewportWidth/ViewportHeight fix the desktop viewport.
	ViewportWidth  int // default: 1920
	ViewportHeight int // default: 1080
}

// ScraperConfig controls scraping behavior.
type ScraperConfig struct {
	// NavigationTimeout bounds a single page.Navigate + load wait.
	NavigationTimeout time.Duration // default: 45s

	// SettleTimeout bounds the post-navigation network-quiescence wait.
	// Settle failure is tolerated; many sites never go fully idle.
	SettleTimeout time.Duration // default: 5s

	// JobTimeout is the hard ceiling on one whole job, all pages included.
	JobTimeout time.Duration // default: 10m

	// StaticFetchTimeout is the hard deadline for the degraded static
	// fetch path.
	StaticFetchTimeout time.Duration // default: 15s

	// BlockedResourceTypes lists resource types aborted by the hijack
	// router. default: ["Image", "Media", "Font"]
	BlockedResourceTypes []string

	// ScrollSteps / ScrollStepDelay tune the incremental lazy-load scroll.
	ScrollSteps     int           // default: 6
	ScrollStepDelay time.Duration // default: 250ms

	// JitterFraction is the fraction of the inter-page delay added as
	// random jitter (0.5 → delay..1.5*delay).
	JitterFraction float64 // default: 0.5

	// StrategyMemoryTTL is how long a domain's winning extraction
	// strategy is remembered.
	StrategyMemoryTTL time.Duration // default: 24h
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool     // default: true
	APIKeys []string // valid API keys
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 2
	Burst             int     // default: 5
}

// CacheConfig controls the preview result cache.
type CacheConfig struct {
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// EnrichConfig controls the optional enrichment collaborator. The engine
// works fully without it; enrichment only upgrades heuristic fields.
type EnrichConfig struct {
	BaseURL string // e.g. "https://api.openai.com/v1"; empty disables enrichment
	APIKey  string
	Model   string // default: "gpt-4o-mini"
}

// WebhookConfig controls result hand-off to the persistence collaborator.
type WebhookConfig struct {
	URL    string // empty disables delivery
	Secret string // HMAC signing secret
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("TRACKER_HOST", "0.0.0.0"),
			Port: envIntOr("TRACKER_PORT", 8080),
			Mode: envOr("TRACKER_MODE", "release"),
		},
		Browser: BrowserConfig{
			RemoteWS:    os.Getenv("TRACKER_BROWSER_WS"),
			RemoteToken: os.Getenv("TRACKER_BROWSER_TOKEN"),
			Headless:    envBoolOr("TRACKER_HEADLESS", true),
			NoSandbox:   envBoolOr("TRACKER_NO_SANDBOX", false),
			BrowserBin:  os.Getenv("TRACKER_BROWSER_BIN"),
			UserAgents: envSliceOr("TRACKER_USER_AGENTS", []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36 Edg/130.0.0.0",
			}),
			ViewportWidth:  envIntOr("TRACKER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: envIntOr("TRACKER_VIEWPORT_HEIGHT", 1080),
		},
		Scraper: ScraperConfig{
			NavigationTimeout:  envDurationOr("TRACKER_NAV_TIMEOUT", 45*time.Second),
			SettleTimeout:      envDurationOr("TRACKER_SETTLE_TIMEOUT", 5*time.Second),
			JobTimeout:         envDurationOr("TRACKER_JOB_TIMEOUT", 10*time.Minute),
			StaticFetchTimeout: envDurationOr("TRACKER_STATIC_TIMEOUT", 15*time.Second),
			BlockedResourceTypes: envSliceOr("TRACKER_BLOCKED_RESOURCES", []string{
				"Image", "Media", "Font",
			}),
			ScrollSteps:       envIntOr("TRACKER_SCROLL_STEPS", 6),
			ScrollStepDelay:   envDurationOr("TRACKER_SCROLL_STEP_DELAY", 250*time.Millisecond),
			JitterFraction:    envFloatOr("TRACKER_JITTER_FRACTION", 0.5),
			StrategyMemoryTTL: envDurationOr("TRACKER_STRATEGY_MEMORY_TTL", 24*time.Hour),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("TRACKER_AUTH_ENABLED", true),
			APIKeys: envSliceOr("TRACKER_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("TRACKER_RATE_RPS", 2.0),
			Burst:             envIntOr("TRACKER_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("TRACKER_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("TRACKER_LOG_LEVEL", "info"),
			Format: envOr("TRACKER_LOG_FORMAT", "json"),
		},
		Enrich: EnrichConfig{
			BaseURL: os.Getenv("TRACKER_ENRICH_BASE_URL"),
			APIKey:  os.Getenv("TRACKER_ENRICH_API_KEY"),
			Model:   envOr("TRACKER_ENRICH_MODEL", "gpt-4o-mini"),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("TRACKER_WEBHOOK_URL"),
			Secret: os.Getenv("TRACKER_WEBHOOK_SECRET"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
