package models

import (
	"fmt"
	"net/url"

	"github.com/andybalholm/cascadia"
)

// Attribute kinds a ScrapingField can read from a matched element.
const (
	AttrText = "text" // trimmed text content
	AttrSrc  = "src"  // image source, preferring the last srcset entry
	AttrHref = "href" // anchor URL, absolutized against the page base
	AttrData = "data" // named data-* attribute (DataAttr must be set)
)

// Pagination modes.
const (
	PaginationNone   = "none"
	PaginationClick  = "click"
	PaginationScroll = "scroll"
)

// Scrape kinds.
const (
	KindProducts = "products"
	KindSlides   = "slides"
)

// DefaultMaxPages is the page ceiling applied when a paginated job omits
// max_pages. A stale "next" selector in click mode would otherwise loop
// forever, so every paginated job gets a finite bound.
const DefaultMaxPages = 20

// DefaultPageDelayMs is the base inter-page delay before jitter.
const DefaultPageDelayMs = 1500

// ScrapingField is one declarative extraction rule: where to look under a
// list item (CSS), what to read (attribute kind), and how the value takes
// part in record lifecycle (required / uniqueKey).
type ScrapingField struct {
	// Label is the output key in the raw record.
	Label string `json:"label" binding:"required"`

	// Selector is a CSS selector resolved against each list-item element.
	// Empty means the list-item element itself (e.g. a card that is an
	// anchor).
	Selector string `json:"selector,omitempty"`

	// Attribute is one of "text", "src", "href", "data".
	Attribute string `json:"attribute" binding:"required,oneof=text src href data"`

	// DataAttr names the data-* attribute when Attribute is "data".
	DataAttr string `json:"data_attr,omitempty"`

	// Required drops the whole record when this field yields no value.
	Required bool `json:"required,omitempty"`

	// UniqueKey includes this field's value in the dedup fingerprint.
	UniqueKey bool `json:"unique_key,omitempty"`
}

// ScrapingConfig describes one scrape job. It is immutable for the duration
// of the job: the orchestrator copies it before applying overrides.
type ScrapingConfig struct {
	// StartURL is the listing page to open first. Required.
	StartURL string `json:"start_url" binding:"required,url"`

	// Kind selects the output shape: "products" (default) or "slides"
	// (hero-carousel promo banners).
	Kind string `json:"kind,omitempty" binding:"omitempty,oneof=products slides"`

	// ListSelector identifies each repeated item element on the page.
	ListSelector string `json:"list_selector" binding:"required"`

	// Fields are the ordered extraction rules applied per list item.
	Fields []ScrapingField `json:"fields" binding:"required,min=1,dive"`

	// PaginationMode is "none" (default), "click" or "scroll".
	PaginationMode string `json:"pagination_mode,omitempty" binding:"omitempty,oneof=none click scroll"`

	// PaginationNext is the "next page" selector for click mode.
	PaginationNext string `json:"pagination_next,omitempty"`

	// MaxPages bounds pagination. 0 means DefaultMaxPages for paginated
	// modes; always 1 effective page for mode "none".
	MaxPages int `json:"max_pages,omitempty" binding:"omitempty,min=1,max=200"`

	// MaxItems bounds the total record count. 0 means unbounded.
	MaxItems int `json:"max_items,omitempty" binding:"omitempty,min=1"`

	// PageDelayMs is the base delay between pages, before jitter.
	PageDelayMs int `json:"page_delay_ms,omitempty" binding:"omitempty,min=0,max=60000"`

	// AllowStatic permits the degraded single-page static fetch when no
	// browser session can be acquired.
	AllowStatic bool `json:"allow_static,omitempty"`

	// AllowHeuristic permits the content-keyword fallback extraction when
	// the structural selectors match nothing.
	AllowHeuristic bool `json:"allow_heuristic,omitempty"`

	// HeuristicKeywords is the domain keyword set for the fallback
	// heuristic; a built-in catalog vocabulary applies when empty.
	HeuristicKeywords []string `json:"heuristic_keywords,omitempty"`
}

// Defaults applies default values to unset fields.
func (c *ScrapingConfig) Defaults() {
	if c.Kind == "" {
		c.Kind = KindProducts
	}
	if c.PaginationMode == "" {
		c.PaginationMode = PaginationNone
	}
	if c.PaginationMode != PaginationNone && c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.PaginationMode == PaginationNone {
		c.MaxPages = 1
	}
	if c.PageDelayMs <= 0 {
		c.PageDelayMs = DefaultPageDelayMs
	}
}

// Validate checks the parts gin's binding tags cannot express: selector
// syntax, attribute/data coherence, and the dedup invariant (at least one
// uniqueKey field, otherwise the normalizer cannot fingerprint records).
func (c *ScrapingConfig) Validate() error {
	if _, err := url.ParseRequestURI(c.StartURL); err != nil {
		return NewScrapeError(ErrCodeInvalidConfig, fmt.Sprintf("start_url %q is not a valid URL", c.StartURL), err)
	}
	if _, err := cascadia.Parse(c.ListSelector); err != nil {
		return NewScrapeError(ErrCodeInvalidConfig, fmt.Sprintf("list_selector %q is not a valid CSS selector", c.ListSelector), err)
	}
	if c.PaginationMode == PaginationClick && c.PaginationNext == "" {
		return NewScrapeError(ErrCodeInvalidConfig, "pagination_mode \"click\" requires pagination_next", nil)
	}
	if c.PaginationNext != "" {
		if _, err := cascadia.Parse(c.PaginationNext); err != nil {
			return NewScrapeError(ErrCodeInvalidConfig, fmt.Sprintf("pagination_next %q is not a valid CSS selector", c.PaginationNext), err)
		}
	}

	seen := make(map[string]struct{}, len(c.Fields))
	hasUniqueKey := false
	for _, f := range c.Fields {
		if _, dup := seen[f.Label]; dup {
			return NewScrapeError(ErrCodeInvalidConfig, fmt.Sprintf("duplicate field label %q", f.Label), nil)
		}
		seen[f.Label] = struct{}{}

		if f.Selector != "" {
			if _, err := cascadia.Parse(f.Selector); err != nil {
				return NewScrapeError(ErrCodeInvalidConfig, fmt.Sprintf("field %q: selector %q is not a valid CSS selector", f.Label, f.Selector), err)
			}
		}
		if f.Attribute == AttrData && f.DataAttr == "" {
			return NewScrapeError(ErrCodeInvalidConfig, fmt.Sprintf("field %q: attribute \"data\" requires data_attr", f.Label), nil)
		}
		if f.UniqueKey {
			hasUniqueKey = true
		}
	}
	if !hasUniqueKey {
		return NewScrapeError(ErrCodeInvalidConfig, "at least one field must be marked unique_key", nil)
	}
	return nil
}

// UniqueKeyLabels returns the labels of all uniqueKey fields in config order.
func (c *ScrapingConfig) UniqueKeyLabels() []string {
	var labels []string
	for _, f := range c.Fields {
		if f.UniqueKey {
			labels = append(labels, f.Label)
		}
	}
	return labels
}

// PreviewOverride returns a copy of the config forced into preview shape:
// at most 10 items from a single page. This is a strict override of whatever
// the caller supplied, not a merge.
func (c ScrapingConfig) PreviewOverride() ScrapingConfig {
	c.MaxItems = 10
	c.PaginationMode = PaginationNone
	c.MaxPages = 1
	return c
}
