package extract

import (
	"net/url"
	"testing"

	"github.com/Modzmart2112/Tracker-sub001/models"
)

const unknownShopHTML = `<html><body>
<li class="product-tile">
  Makita XFD131 Brushless Drill Kit
  <span>$249.00</span>
  <span>$199.00</span>
  <a href="/p/xfd131"><img src="/img/xfd131.jpg"></a>
</li>
<li class="product-tile">
  DeWalt DCD791 Cordless Driver
  <span>$179.00</span>
  <a href="/p/dcd791"></a>
</li>
<li class="nav-item">
  About our company and contact details
</li>
</body></html>`

func heuristicQuery(t *testing.T) *DocumentQuery {
	t.Helper()
	base, _ := url.Parse("https://example.com/")
	pq, err := NewDocumentQuery(unknownShopHTML, base)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return pq
}

func TestHeuristicExtract(t *testing.T) {
	cfg := &models.ScrapingConfig{ListSelector: ".does-not-match"}

	records, err := Heuristic{}.Extract(heuristicQuery(t), cfg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (nav block has no price)", len(records))
	}

	for _, rec := range records {
		if !rec.Provisional {
			t.Error("heuristic records must be marked provisional")
		}
	}

	first := records[0]
	if got := first.Get(HeuristicLabelTitle); got != "Makita XFD131 Brushless Drill Kit" {
		t.Errorf("title = %q", got)
	}
	// Two prices: last is current, first is the original strikethrough.
	if got := first.Get(HeuristicLabelPrice); got != "$199.00" {
		t.Errorf("price = %q, want last price on the card", got)
	}
	if got := first.Get(HeuristicLabelOriginalPrice); got != "$249.00" {
		t.Errorf("original_price = %q, want first price on the card", got)
	}
	if got := first.Get(HeuristicLabelURL); got != "https://example.com/p/xfd131" {
		t.Errorf("url = %q", got)
	}
	if got := first.Get(HeuristicLabelImage); got != "https://example.com/img/xfd131.jpg" {
		t.Errorf("image = %q", got)
	}

	second := records[1]
	if got := second.Get(HeuristicLabelPrice); got != "$179.00" {
		t.Errorf("single price card: price = %q", got)
	}
	if second.Has(HeuristicLabelOriginalPrice) {
		t.Error("single price card should have no original_price")
	}
}

func TestHeuristicExtract_CustomKeywords(t *testing.T) {
	html := `<html><body>
<div class="item">
  Organic Arabica Beans 1kg
  <span>$24.00</span>
</div>
</body></html>`
	pq, err := NewDocumentQuery(html, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Default tool vocabulary does not match coffee products.
	records, err := Heuristic{}.Extract(pq, &models.ScrapingConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("default keywords matched %d records, want 0", len(records))
	}

	records, err = Heuristic{}.Extract(pq, &models.ScrapingConfig{
		HeuristicKeywords: []string{"beans", "arabica"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("custom keywords matched %d records, want 1", len(records))
	}
}

func TestHeuristicExtract_MaxItems(t *testing.T) {
	cfg := &models.ScrapingConfig{MaxItems: 1}

	records, err := Heuristic{}.Extract(heuristicQuery(t), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want MaxItems bound of 1", len(records))
	}
}

func TestFirstTitleLine(t *testing.T) {
	text := "\n$199.00\nMakita XFD131 Drill Kit\nIn stock\n"
	got := firstTitleLine(text, DefaultKeywords)
	if got != "Makita XFD131 Drill Kit" {
		t.Errorf("firstTitleLine = %q", got)
	}
}
