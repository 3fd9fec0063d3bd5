// Package scraper drives headless-browser scrape jobs: session acquisition,
// navigation, pagination, and the per-job orchestration loop.
package scraper

import (
	"context"
	"log/slog"
	"math/rand"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/Modzmart2112/Tracker-sub001/config"
	"github.com/Modzmart2112/Tracker-sub001/models"
)

// Session is one acquired browser tab, exclusively owned by a single job
// from Acquire to Release.
type Session interface {
	Page() Page
	Release()
}

// SessionManager acquires browser sessions. The rod-backed Manager prefers
// a configured remote endpoint and falls back to a local launch.
type SessionManager interface {
	Acquire(ctx context.Context) (Session, error)
}

// Manager implements SessionManager on rod. It holds no browser state
// itself: every job owns its session for the job's lifetime, so concurrent
// jobs never share a page.
type Manager struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
}

// NewManager creates a session manager from configuration.
func NewManager(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) *Manager {
	return &Manager{browserCfg: browserCfg, scraperCfg: scraperCfg}
}

// Acquire connects a browser and prepares one page with the anti-detection
// setup: stealth script, rotated user agent, fixed desktop viewport, and
// the resource-blocking hijack router.
//
// A configured remote endpoint is tried first; failure there falls back to
// a local launch with a warning, not an error. Only failure of both paths
// returns BROWSER_UNAVAILABLE.
func (m *Manager) Acquire(ctx context.Context) (Session, error) {
	browser, owned, disconnect, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	teardown := browserTeardown(owned, browser.Close, disconnect)

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		teardown()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserUnavailable,
			"failed to create page",
			err,
		)
	}

	// Stealth must be injected before any navigation; it only affects
	// documents created after installation.
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
	}

	ua := pickUserAgent(m.browserCfg.UserAgents)
	if ua != "" {
		if uaErr := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); uaErr != nil {
			slog.Warn("user-agent override failed", "error", uaErr)
		}
	}

	if vpErr := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             m.browserCfg.ViewportWidth,
		Height:            m.browserCfg.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); vpErr != nil {
		slog.Warn("viewport override failed", "error", vpErr)
	}

	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
		}),
	}.Call(page)

	router := mountHijack(page, m.scraperCfg.BlockedResourceTypes)

	return &rodSession{
		page:     newRodPage(page, m.scraperCfg),
		router:   router,
		teardown: teardown,
	}, nil
}

// connect returns a browser connection, whether this process owns the
// underlying browser (launched locally) or merely borrows it (remote pool),
// and the cancel that drops the control connection.
func (m *Manager) connect(ctx context.Context) (*rod.Browser, bool, context.CancelFunc, error) {
	if m.browserCfg.RemoteWS != "" {
		browser, disconnect, err := m.connectRemote(ctx)
		if err == nil {
			return browser, false, disconnect, nil
		}
		slog.Warn("remote browser unavailable, falling back to local launch",
			"endpoint", m.browserCfg.RemoteWS, "error", err)
	}

	browser, disconnect, err := m.launchLocal(ctx)
	if err != nil {
		return nil, false, nil, models.NewScrapeError(
			models.ErrCodeBrowserUnavailable,
			"no browser session available (remote and local both failed)",
			err,
		)
	}
	return browser, true, disconnect, nil
}

func (m *Manager) connectRemote(ctx context.Context) (*rod.Browser, context.CancelFunc, error) {
	ws := m.browserCfg.RemoteWS
	if m.browserCfg.RemoteToken != "" {
		if u, err := url.Parse(ws); err == nil {
			q := u.Query()
			q.Set("token", m.browserCfg.RemoteToken)
			u.RawQuery = q.Encode()
			ws = u.String()
		}
	}

	bctx, cancel := context.WithCancel(ctx)
	browser := rod.New().ControlURL(ws).Context(bctx)
	if err := browser.Connect(); err != nil {
		cancel()
		return nil, nil, err
	}
	return browser, cancel, nil
}

func (m *Manager) launchLocal(ctx context.Context) (*rod.Browser, context.CancelFunc, error) {
	l := launcher.New().
		Headless(m.browserCfg.Headless).
		NoSandbox(m.browserCfg.NoSandbox)

	if m.browserCfg.BrowserBin != "" {
		l = l.Bin(m.browserCfg.BrowserBin)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, err
	}
	slog.Info("browser launched", "controlURL", controlURL)

	bctx, cancel := context.WithCancel(ctx)
	browser := rod.New().ControlURL(controlURL).Context(bctx)
	if err := browser.Connect(); err != nil {
		cancel()
		return nil, nil, err
	}
	return browser, cancel, nil
}

// rodSession holds the browser handle for one job.
type rodSession struct {
	page     *rodPage
	router   *rod.HijackRouter
	teardown func()
}

func (s *rodSession) Page() Page { return s.page }

// Release tears down the session on every exit path: hijack router, tab,
// then the browser handle itself.
func (s *rodSession) Release() {
	if s.router != nil {
		_ = s.router.Stop()
	}
	if err := s.page.raw.Close(); err != nil {
		slog.Warn("page close failed", "error", err)
	}
	s.teardown()
}

// browserTeardown returns the release step for the browser handle. A locally
// launched browser is closed, which terminates its process. A borrowed
// remote browser must never receive Browser.close: rod sends that CDP
// command for any connection without a browser context, and it would kill
// the pool browser shared by every other job. Borrowed sessions only drop
// the control connection; their tab was already closed by Release.
func browserTeardown(owned bool, closeFn func() error, disconnect context.CancelFunc) func() {
	return func() {
		if owned {
			if err := closeFn(); err != nil {
				slog.Warn("browser close failed", "error", err)
			}
		}
		disconnect()
	}
}

func pickUserAgent(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rand.Intn(len(pool))]
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
