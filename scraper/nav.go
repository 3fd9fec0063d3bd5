package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/Modzmart2112/Tracker-sub001/config"
	"github.com/Modzmart2112/Tracker-sub001/extract"
	"github.com/Modzmart2112/Tracker-sub001/models"
)

// Page is the orchestrator's view of one browser tab. It carries no retry
// logic; retries are orchestrator policy.
type Page interface {
	// Goto navigates and waits for the DOM-parsed milestone within the
	// navigation timeout. Timeouts come back as recoverable errors.
	Goto(ctx context.Context, url string) error

	// Settle waits briefly for network/DOM quiescence. Best-effort:
	// failure to settle is tolerated because many sites hold persistent
	// connections open indefinitely.
	Settle(ctx context.Context)

	// ScrollToBottom performs the configured number of incremental scroll
	// steps with short delays, triggering lazy-loaded content.
	ScrollToBottom(ctx context.Context) error

	// ScrollHeight returns the current document scroll height.
	ScrollHeight() (float64, error)

	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error

	// Has reports whether any element matches selector right now.
	Has(selector string) (bool, error)

	// Query exposes the current DOM to the extraction engine.
	Query() extract.PageQuery
}

// rodPage implements Page on a rod tab.
type rodPage struct {
	raw *rod.Page
	cfg config.ScraperConfig
}

func newRodPage(page *rod.Page, cfg config.ScraperConfig) *rodPage {
	return &rodPage{raw: page, cfg: cfg}
}

func (r *rodPage) Goto(ctx context.Context, url string) error {
	p := r.raw.Context(ctx).Timeout(r.cfg.NavigationTimeout)
	if err := p.Navigate(url); err != nil {
		return categorizeNavError(err, "navigation failed")
	}
	// DOM-stable approximates the DOM-parsed milestone without the Fetch
	// domain conflicts WaitRequestIdle has alongside an active hijack
	// router on newer Chromium.
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("DOM did not stabilise after navigation, proceeding", "url", url, "error", err)
	}
	return nil
}

func (r *rodPage) Settle(ctx context.Context) {
	p := r.raw.Context(ctx).Timeout(r.cfg.SettleTimeout)
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("settle wait did not converge, proceeding", "error", err)
	}
}

func (r *rodPage) ScrollToBottom(ctx context.Context) error {
	p := r.raw.Context(ctx)

	res, err := p.Eval(`() => window.innerHeight`)
	if err != nil {
		return err
	}
	step := res.Value.Num()

	for i := 0; i < r.cfg.ScrollSteps; i++ {
		if err := p.Mouse.Scroll(0, step, 1); err != nil {
			return err
		}
		select {
		case <-time.After(r.cfg.ScrollStepDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (r *rodPage) ScrollHeight() (float64, error) {
	res, err := r.raw.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return res.Value.Num(), nil
}

func (r *rodPage) Click(ctx context.Context, selector string) error {
	el, err := r.raw.Context(ctx).Sleeper(rod.NotFoundSleeper).Element(selector)
	if err != nil {
		return err
	}
	// Best-effort: some sites refuse clicks on off-screen elements.
	_ = el.ScrollIntoView()
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (r *rodPage) Has(selector string) (bool, error) {
	has, _, err := r.raw.Has(selector)
	return has, err
}

func (r *rodPage) Query() extract.PageQuery {
	return extract.NewRodPage(r.raw)
}

// categorizeNavError wraps raw navigation errors into typed ScrapeErrors.
func categorizeNavError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "navigation canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
