package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/Modzmart2112/Tracker-sub001/models"
)

func testPaginator() *Paginator {
	return &Paginator{SettleDelay: time.Millisecond}
}

func TestAdvance_NoneMode(t *testing.T) {
	page := &fakePage{pages: []string{cardsPage("A")}, alwaysMore: true}
	cfg := &models.ScrapingConfig{PaginationMode: models.PaginationNone}

	more, err := testPaginator().Advance(context.Background(), page, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if more {
		t.Error("mode none must never report more pages")
	}
	if page.clicks != 0 || page.scrolls != 0 {
		t.Error("mode none must not touch the page")
	}
}

func TestAdvance_ClickMode(t *testing.T) {
	page := &fakePage{pages: []string{cardsPage("A"), cardsPage("B")}}
	cfg := &models.ScrapingConfig{
		PaginationMode: models.PaginationClick,
		PaginationNext: ".next",
	}

	more, err := testPaginator().Advance(context.Background(), page, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !more {
		t.Error("want more = true while the next control exists")
	}
	if page.clicks != 1 {
		t.Errorf("clicks = %d, want 1", page.clicks)
	}

	// Now on the last page: the control is gone, terminal without clicking.
	more, err = testPaginator().Advance(context.Background(), page, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if more {
		t.Error("want more = false when the next control is gone")
	}
	if page.clicks != 1 {
		t.Errorf("clicks = %d, want still 1", page.clicks)
	}
}

func TestAdvance_ScrollMode(t *testing.T) {
	page := &fakePage{pages: []string{cardsPage("A")}, growLimit: 1}
	cfg := &models.ScrapingConfig{PaginationMode: models.PaginationScroll}

	more, err := testPaginator().Advance(context.Background(), page, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !more {
		t.Error("want more = true while the document grows")
	}

	more, err = testPaginator().Advance(context.Background(), page, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if more {
		t.Error("want more = false once the document stops growing")
	}
}
