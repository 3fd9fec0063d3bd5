package scraper

import (
	"context"
	"time"

	"github.com/Modzmart2112/Tracker-sub001/models"
)

// Paginator decides whether and how to advance a page to more results.
// It reports only whether more content exists; the absolute page and item
// ceilings are orchestrator policy and always win over this signal.
type Paginator struct {
	// SettleDelay is the fixed wait after a click or scroll advance,
	// giving the site time to swap or append content.
	SettleDelay time.Duration
}

// Advance moves the page forward per the configured pagination mode and
// reports whether another page of content is available.
//
//   - "none": always false; single-page job.
//   - "click": false when the next selector is gone (terminal), otherwise
//     click it and report true. There is no verification that content
//     actually changed, which is why the config layer guarantees a finite
//     max_pages for this mode.
//   - "scroll": scroll to the bottom and report true only when the document
//     grew, meaning more content was lazy-loaded.
func (pg *Paginator) Advance(ctx context.Context, page Page, cfg *models.ScrapingConfig) (bool, error) {
	switch cfg.PaginationMode {
	case models.PaginationClick:
		return pg.advanceClick(ctx, page, cfg.PaginationNext)
	case models.PaginationScroll:
		return pg.advanceScroll(ctx, page)
	default:
		return false, nil
	}
}

func (pg *Paginator) advanceClick(ctx context.Context, page Page, nextSelector string) (bool, error) {
	has, err := page.Has(nextSelector)
	if err != nil {
		return false, err
	}
	if !has {
		return false, nil
	}
	if err := page.Click(ctx, nextSelector); err != nil {
		return false, err
	}
	if err := pg.wait(ctx); err != nil {
		return false, err
	}
	page.Settle(ctx)
	return true, nil
}

func (pg *Paginator) advanceScroll(ctx context.Context, page Page) (bool, error) {
	before, err := page.ScrollHeight()
	if err != nil {
		return false, err
	}
	if err := page.ScrollToBottom(ctx); err != nil {
		return false, err
	}
	if err := pg.wait(ctx); err != nil {
		return false, err
	}
	after, err := page.ScrollHeight()
	if err != nil {
		return false, err
	}
	return after > before, nil
}

func (pg *Paginator) wait(ctx context.Context) error {
	delay := pg.SettleDelay
	if delay <= 0 {
		delay = time.Second
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
