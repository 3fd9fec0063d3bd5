package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"time"

	"github.com/Modzmart2112/Tracker-sub001/config"
	"github.com/Modzmart2112/Tracker-sub001/extract"
	"github.com/Modzmart2112/Tracker-sub001/models"
	"github.com/Modzmart2112/Tracker-sub001/normalize"
)

// Orchestrator is the top-level per-job driver. It composes session
// acquisition, navigation, extraction, pagination and normalization,
// enforces the page/item ceilings, and guarantees session release on every
// exit path.
//
// Job lifecycle: Initializing (acquire + first navigation) → Paginating
// (extract, advance, repeat) → Finalizing (normalize, trim, release).
// Failures after initialization accumulate as error strings in the result;
// only initialization failures make the whole job fail.
type Orchestrator struct {
	sessions   SessionManager
	cfg        config.ScraperConfig
	paginator  *Paginator
	structural extract.Strategy
	heuristic  extract.Strategy
	memory     *extract.StrategyMemory
	static     *StaticFetcher // nil disables the degraded static path
}

// NewOrchestrator wires an orchestrator. memory and static may be nil.
func NewOrchestrator(sessions SessionManager, scraperCfg config.ScraperConfig, memory *extract.StrategyMemory, static *StaticFetcher) *Orchestrator {
	return &Orchestrator{
		sessions:   sessions,
		cfg:        scraperCfg,
		paginator:  &Paginator{SettleDelay: scraperCfg.SettleTimeout},
		structural: extract.Structural{},
		heuristic:  extract.Heuristic{},
		memory:     memory,
		static:     static,
	}
}

// Run executes one scrape job and always returns a terminal result, never
// a panic or a leaked session. Cancel the context to abort; release still
// runs.
func (o *Orchestrator) Run(ctx context.Context, jobCfg models.ScrapingConfig) *models.ScrapingResult {
	start := time.Now()
	jobCfg.Defaults()

	if err := jobCfg.Validate(); err != nil {
		return failedResult(start, err.Error())
	}

	if o.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.JobTimeout)
		defer cancel()
	}

	// ── Initializing ────────────────────────────────────────────────
	session, err := o.sessions.Acquire(ctx)
	if err != nil {
		if jobCfg.AllowStatic && o.static != nil {
			slog.Info("browser unavailable, using degraded static fetch", "url", jobCfg.StartURL)
			return o.runStatic(ctx, jobCfg, start, err)
		}
		return failedResult(start, err.Error())
	}
	defer session.Release()

	page := session.Page()
	if err := page.Goto(ctx, jobCfg.StartURL); err != nil {
		return failedResult(start, err.Error())
	}
	page.Settle(ctx)

	// ── Paginating ──────────────────────────────────────────────────
	domain := domainOf(jobCfg.StartURL)
	var (
		rawAll []models.RawRecord
		errs   []string
	)
	pages := 0

	for {
		pages++

		// Trigger lazy-loaded content before extraction. Scroll-mode
		// jobs skip this: their advance step does the scrolling, and
		// pre-scrolling here would consume pages prematurely.
		if jobCfg.PaginationMode != models.PaginationScroll {
			if err := page.ScrollToBottom(ctx); err != nil {
				slog.Debug("pre-extraction scroll failed", "page", pages, "error", err)
			}
		}

		records, err := o.extractPage(page.Query(), &jobCfg, domain)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("page %d: %v", pages, err))
		case len(records) == 0:
			errs = append(errs, fmt.Sprintf("page %d: list selector matched nothing", pages))
		default:
			rawAll = append(rawAll, records...)
		}

		// Ceilings always win over the driver's own signal.
		if pages >= jobCfg.MaxPages {
			break
		}
		if jobCfg.MaxItems > 0 && len(rawAll) >= jobCfg.MaxItems {
			break
		}

		more, err := o.paginator.Advance(ctx, page, &jobCfg)
		if err != nil {
			errs = append(errs, fmt.Sprintf("pagination after page %d: %v", pages, err))
			break
		}
		if !more {
			break
		}

		if err := o.interPageDelay(ctx, &jobCfg); err != nil {
			errs = append(errs, "job canceled during inter-page delay")
			break
		}
	}

	// ── Finalizing ──────────────────────────────────────────────────
	result := o.finalize(rawAll, &jobCfg, errs)
	result.PagesScraped = pages
	result.ExecutionMs = time.Since(start).Milliseconds()
	return result
}

// Preview runs the job in preview shape: first 10 items of the first page,
// regardless of the caller-supplied limits. Strict override, not a merge.
func (o *Orchestrator) Preview(ctx context.Context, jobCfg models.ScrapingConfig) *models.ScrapingResult {
	return o.Run(ctx, jobCfg.PreviewOverride())
}

// extractPage runs the extraction strategies against the current DOM.
// The structural strategy goes first unless strategy memory says this
// domain only ever yields through the heuristic. An empty structural result
// escalates to the heuristic when the job allows it.
func (o *Orchestrator) extractPage(pq extract.PageQuery, jobCfg *models.ScrapingConfig, domain string) ([]models.RawRecord, error) {
	strategies := []extract.Strategy{o.structural}
	if jobCfg.AllowHeuristic {
		if o.memory != nil && o.memory.Get(domain) == o.heuristic.Name() {
			strategies = []extract.Strategy{o.heuristic, o.structural}
		} else {
			strategies = append(strategies, o.heuristic)
		}
	}

	var lastErr error
	for _, s := range strategies {
		records, err := s.Extract(pq, jobCfg)
		if err != nil {
			lastErr = err
			continue
		}
		if len(records) > 0 {
			if o.memory != nil {
				o.memory.Set(domain, s.Name())
			}
			slog.Debug("extraction strategy produced records",
				"strategy", s.Name(), "domain", domain, "records", len(records))
			return records, nil
		}
	}
	return nil, lastErr
}

// finalize normalizes the accumulated raw records and trims the overshoot
// from the final page.
func (o *Orchestrator) finalize(raw []models.RawRecord, jobCfg *models.ScrapingConfig, errs []string) *models.ScrapingResult {
	base, _ := url.Parse(jobCfg.StartURL)
	site := normalize.SiteContext{Base: base, Config: jobCfg}

	result := &models.ScrapingResult{
		Success: true,
		Errors:  errs,
	}

	if jobCfg.Kind == models.KindSlides {
		slides := normalize.Slides(raw, site)
		if jobCfg.MaxItems > 0 && len(slides) > jobCfg.MaxItems {
			slides = slides[:jobCfg.MaxItems]
		}
		result.Slides = slides
		result.Data = []models.ScrapedProduct{}
		result.TotalItems = len(slides)
		return result
	}

	products := normalize.Products(raw, site)
	if jobCfg.MaxItems > 0 && len(products) > jobCfg.MaxItems {
		products = products[:jobCfg.MaxItems]
	}
	result.Data = products
	result.TotalItems = len(products)
	return result
}

// runStatic is the degraded single-page path used when no browser session
// can be acquired and the job opted in. No pagination, lower fidelity.
func (o *Orchestrator) runStatic(ctx context.Context, jobCfg models.ScrapingConfig, start time.Time, acquireErr error) *models.ScrapingResult {
	dq, err := o.static.Fetch(ctx, jobCfg.StartURL)
	if err != nil {
		return failedResult(start, acquireErr.Error(), "static fetch failed: "+err.Error())
	}

	errs := []string{"degraded mode: " + acquireErr.Error()}
	records, err := o.extractPage(dq, &jobCfg, domainOf(jobCfg.StartURL))
	switch {
	case err != nil:
		errs = append(errs, "static extraction: "+err.Error())
	case len(records) == 0:
		errs = append(errs, "static extraction: list selector matched nothing")
	}

	result := o.finalize(records, &jobCfg, errs)
	result.PagesScraped = 1
	result.ExecutionMs = time.Since(start).Milliseconds()
	return result
}

// interPageDelay sleeps the configured base delay plus random jitter, so
// request timing does not form a constant fingerprint.
func (o *Orchestrator) interPageDelay(ctx context.Context, jobCfg *models.ScrapingConfig) error {
	delay := time.Duration(jobCfg.PageDelayMs) * time.Millisecond
	if o.cfg.JitterFraction > 0 {
		jitter := time.Duration(rand.Float64() * o.cfg.JitterFraction * float64(delay))
		delay += jitter
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func failedResult(start time.Time, errs ...string) *models.ScrapingResult {
	return &models.ScrapingResult{
		Success:     false,
		Data:        []models.ScrapedProduct{},
		Errors:      errs,
		ExecutionMs: time.Since(start).Milliseconds(),
	}
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
