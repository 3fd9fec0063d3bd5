package models

import (
	"errors"
	"testing"
)

func validConfig() ScrapingConfig {
	return ScrapingConfig{
		StartURL:     "https://example.com/shop",
		ListSelector: ".card",
		Fields: []ScrapingField{
			{Label: "title", Selector: ".t", Attribute: AttrText, Required: true, UniqueKey: true},
			{Label: "price", Selector: ".p", Attribute: AttrText},
		},
	}
}

func TestDefaults_NoneMode(t *testing.T) {
	cfg := validConfig()
	cfg.MaxPages = 50 // ignored for mode "none"
	cfg.Defaults()

	if cfg.Kind != KindProducts {
		t.Errorf("Kind = %q, want %q", cfg.Kind, KindProducts)
	}
	if cfg.PaginationMode != PaginationNone {
		t.Errorf("PaginationMode = %q, want %q", cfg.PaginationMode, PaginationNone)
	}
	if cfg.MaxPages != 1 {
		t.Errorf("MaxPages = %d, want 1 for mode none", cfg.MaxPages)
	}
	if cfg.PageDelayMs != DefaultPageDelayMs {
		t.Errorf("PageDelayMs = %d, want %d", cfg.PageDelayMs, DefaultPageDelayMs)
	}
}

func TestDefaults_PaginatedCeiling(t *testing.T) {
	cfg := validConfig()
	cfg.PaginationMode = PaginationClick
	cfg.PaginationNext = ".next"
	cfg.Defaults()

	if cfg.MaxPages != DefaultMaxPages {
		t.Errorf("MaxPages = %d, want default ceiling %d", cfg.MaxPages, DefaultMaxPages)
	}

	cfg2 := validConfig()
	cfg2.PaginationMode = PaginationScroll
	cfg2.MaxPages = 3
	cfg2.Defaults()

	if cfg2.MaxPages != 3 {
		t.Errorf("explicit MaxPages overridden: got %d, want 3", cfg2.MaxPages)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ScrapingConfig)
		wantOK bool
	}{
		{"valid", func(c *ScrapingConfig) {}, true},
		{"bad start url", func(c *ScrapingConfig) { c.StartURL = "not a url" }, false},
		{"bad list selector", func(c *ScrapingConfig) { c.ListSelector = "[[[" }, false},
		{"click without next", func(c *ScrapingConfig) { c.PaginationMode = PaginationClick }, false},
		{"bad next selector", func(c *ScrapingConfig) {
			c.PaginationMode = PaginationClick
			c.PaginationNext = "]]]"
		}, false},
		{"duplicate labels", func(c *ScrapingConfig) {
			c.Fields = append(c.Fields, ScrapingField{Label: "title", Attribute: AttrText})
		}, false},
		{"bad field selector", func(c *ScrapingConfig) { c.Fields[0].Selector = "(((" }, false},
		{"data without data_attr", func(c *ScrapingConfig) {
			c.Fields = append(c.Fields, ScrapingField{Label: "sku", Attribute: AttrData})
		}, false},
		{"no unique key", func(c *ScrapingConfig) {
			c.Fields[0].UniqueKey = false
		}, false},
		{"empty field selector is allowed", func(c *ScrapingConfig) {
			c.Fields[1].Selector = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantOK && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tt.wantOK {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				var scrapeErr *ScrapeError
				if !errors.As(err, &scrapeErr) {
					t.Fatalf("error type = %T, want *ScrapeError", err)
				}
				if scrapeErr.Code != ErrCodeInvalidConfig {
					t.Errorf("error code = %q, want %q", scrapeErr.Code, ErrCodeInvalidConfig)
				}
			}
		})
	}
}

func TestUniqueKeyLabels(t *testing.T) {
	cfg := validConfig()
	cfg.Fields = append(cfg.Fields, ScrapingField{Label: "url", Attribute: AttrHref, UniqueKey: true})

	got := cfg.UniqueKeyLabels()
	want := []string{"title", "url"}
	if len(got) != len(want) {
		t.Fatalf("UniqueKeyLabels() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPreviewOverride(t *testing.T) {
	cfg := validConfig()
	cfg.PaginationMode = PaginationClick
	cfg.PaginationNext = ".next"
	cfg.MaxPages = 10
	cfg.MaxItems = 500

	preview := cfg.PreviewOverride()

	if preview.MaxItems != 10 {
		t.Errorf("preview MaxItems = %d, want 10", preview.MaxItems)
	}
	if preview.PaginationMode != PaginationNone {
		t.Errorf("preview PaginationMode = %q, want %q", preview.PaginationMode, PaginationNone)
	}
	if preview.MaxPages != 1 {
		t.Errorf("preview MaxPages = %d, want 1", preview.MaxPages)
	}

	// The original must be untouched.
	if cfg.MaxItems != 500 || cfg.PaginationMode != PaginationClick {
		t.Error("PreviewOverride mutated the original config")
	}
}
