package models

import "time"

// RawRecord is the untyped output of one list-item extraction: field label
// to extracted value, nil when the selector matched nothing. It lives for
// one page-extraction cycle and is consumed by the normalizer.
type RawRecord struct {
	// Fields maps field label → extracted string, nil if absent.
	Fields map[string]*string

	// Index is the element's document-order ordinal on its page, used for
	// SKU generation when the site provides no canonical SKU.
	Index int

	// Provisional marks records produced by the content-keyword fallback
	// heuristic; their confidence is lower than structural extraction.
	Provisional bool
}

// Get returns the value for a label, "" when missing or nil.
func (r *RawRecord) Get(label string) string {
	if v, ok := r.Fields[label]; ok && v != nil {
		return *v
	}
	return ""
}

// Has reports whether the label has a non-nil, non-empty value.
func (r *RawRecord) Has(label string) bool {
	return r.Get(label) != ""
}

// ScrapedProduct is one normalized catalog record. It is created once per
// extraction pass and never mutated; a later scrape of the same fingerprint
// supersedes it with a new record (the store keeps the history).
type ScrapedProduct struct {
	SKU         string    `json:"sku"`
	Title       string    `json:"title"`
	Price       *float64  `json:"price"` // nil when unparsable
	Image       string    `json:"image,omitempty"`
	URL         string    `json:"url,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	Model       string    `json:"model,omitempty"`
	Category    string    `json:"category,omitempty"`
	Fingerprint string    `json:"fingerprint"`
	Provisional bool      `json:"provisional,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// Slide is one normalized hero-carousel promo banner. Its identity is the
// content fingerprint over image+link+label, not the carousel position,
// because carousels reorder between scrapes.
type Slide struct {
	Image       string    `json:"image"`
	Link        string    `json:"link,omitempty"`
	Label       string    `json:"label,omitempty"`
	Fingerprint string    `json:"fingerprint"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// ScrapingResult is the terminal value of one job. Page-level failures land
// in Errors while Success stays true; Success is false only when the job
// could not start at all.
type ScrapingResult struct {
	Success      bool             `json:"success"`
	Data         []ScrapedProduct `json:"data"`
	Slides       []Slide          `json:"slides,omitempty"`
	TotalItems   int              `json:"total_items"`
	PagesScraped int              `json:"pages_scraped"`
	Errors       []string         `json:"errors,omitempty"`
	ExecutionMs  int64            `json:"execution_ms"`
}

// PriceSnapshot is one versioned price observation handed to the store.
type PriceSnapshot struct {
	Fingerprint string    `json:"fingerprint"`
	SKU         string    `json:"sku"`
	Title       string    `json:"title"`
	Price       *float64  `json:"price"`
	ObservedAt  time.Time `json:"observed_at"`
}
