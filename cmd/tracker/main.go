package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Modzmart2112/Tracker-sub001/api"
	"github.com/Modzmart2112/Tracker-sub001/cache"
	"github.com/Modzmart2112/Tracker-sub001/config"
	"github.com/Modzmart2112/Tracker-sub001/enrich"
	"github.com/Modzmart2112/Tracker-sub001/extract"
	"github.com/Modzmart2112/Tracker-sub001/scraper"
	"github.com/Modzmart2112/Tracker-sub001/store"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("tracker starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"remoteBrowser", cfg.Browser.RemoteWS != "",
	)

	// ── 3. Initialise scraping stack ────────────────────────────────
	// Sessions are acquired per job, so nothing launches here yet; a
	// misconfigured browser surfaces on the first job, not at boot.
	sessions := scraper.NewManager(cfg.Browser, cfg.Scraper)
	memory := extract.NewStrategyMemory(cfg.Scraper.StrategyMemoryTTL)
	defer memory.Stop()
	static := scraper.NewStaticFetcher(cfg.Scraper)
	orch := scraper.NewOrchestrator(sessions, cfg.Scraper, memory, static)

	// ── 4. Initialise collaborators ─────────────────────────────────
	snapshots := store.NewMemoryStore()
	notifier := store.NewNotifier(cfg.Webhook)
	enrichClient := enrich.NewClient(nil, cfg.Enrich)
	if enrichClient.Enabled() {
		slog.Info("enrichment enabled", "model", cfg.Enrich.Model)
	}
	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(orch, snapshots, notifier, enrichClient, cc, cfg, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight jobs 30 seconds to finish; a mid-pagination job
	// holds its session until its deferred release runs.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("tracker stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
