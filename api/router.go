// Package api wires the HTTP surface: routes, auth, and rate limiting.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Modzmart2112/Tracker-sub001/api/handler"
	"github.com/Modzmart2112/Tracker-sub001/api/middleware"
	"github.com/Modzmart2112/Tracker-sub001/cache"
	"github.com/Modzmart2112/Tracker-sub001/config"
	"github.com/Modzmart2112/Tracker-sub001/enrich"
	"github.com/Modzmart2112/Tracker-sub001/scraper"
	"github.com/Modzmart2112/Tracker-sub001/store"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(
	orch *scraper.Orchestrator,
	snapshots store.SnapshotStore,
	notifier *store.Notifier,
	enrichClient *enrich.Client,
	cc *cache.Cache,
	cfg *config.Config,
	startTime time.Time,
) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(cfg.Browser, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Scrape jobs
	protected.POST("/jobs", handler.Jobs(orch, snapshots, notifier))
	protected.POST("/jobs/preview", handler.Preview(orch, cc))

	// Products
	protected.GET("/products/:fingerprint/history", handler.History(snapshots))
	protected.POST("/products/enrich", handler.Enrich(enrichClient))
	protected.POST("/products/match", handler.Match(enrichClient))

	return r
}
