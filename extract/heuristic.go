package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Modzmart2112/Tracker-sub001/models"
)

// Raw record labels emitted by the fallback heuristic. Callers treat these
// records as provisional: they come from content-shape guessing, not from
// the site's actual structure.
const (
	HeuristicLabelTitle         = "title"
	HeuristicLabelPrice         = "price"
	HeuristicLabelOriginalPrice = "original_price"
	HeuristicLabelURL           = "url"
	HeuristicLabelImage         = "image"
)

// rePrice matches a currency amount like "$1,299.00" or "$49".
var rePrice = regexp.MustCompile(`\$[\d,]+(\.\d{2})?`)

// DefaultKeywords is the built-in catalog vocabulary used when a job
// supplies no domain keyword set.
var DefaultKeywords = []string{
	"tool", "kit", "set", "drill", "saw", "grinder", "sander", "pack",
	"battery", "charger", "compressor", "wrench", "driver", "blade",
	"brushless", "cordless", "combo", "piece", "pc", "w", "v",
}

// maxCandidateTextLen rejects page-level containers whose text aggregates
// many cards; a single product card's text stays well under this.
const maxCandidateTextLen = 600

// Heuristic is the degraded content-keyword extraction strategy used when
// structural selectors match nothing. It scans broad candidate elements and
// accepts those whose text combines a currency marker with a domain keyword.
type Heuristic struct{}

func (Heuristic) Name() string { return "heuristic" }

// Extract parses the full document and guesses product cards from content
// shape. When an element's text holds several prices, the last is taken as
// the current price and the first as the original (strikethrough) price.
func (Heuristic) Extract(pq PageQuery, cfg *models.ScrapingConfig) ([]models.RawRecord, error) {
	rawHTML, err := pq.HTML()
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	keywords := cfg.HeuristicKeywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	base := pq.Base()
	seen := make(map[string]struct{})
	var records []models.RawRecord

	doc.Find("div, a, li, article").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if cfg.MaxItems > 0 && len(records) >= cfg.MaxItems {
			return false
		}

		text := strings.TrimSpace(sel.Text())
		if text == "" || len(text) > maxCandidateTextLen {
			return true
		}

		prices := rePrice.FindAllString(text, -1)
		if len(prices) == 0 {
			return true
		}
		if !containsKeyword(text, keywords) {
			return true
		}

		title := firstTitleLine(text, keywords)
		if title == "" {
			return true
		}

		current := prices[len(prices)-1]
		dedupKey := title + "|" + current
		if _, dup := seen[dedupKey]; dup {
			return true
		}
		seen[dedupKey] = struct{}{}

		rec := models.RawRecord{
			Fields:      make(map[string]*string, 5),
			Index:       len(records),
			Provisional: true,
		}
		rec.Fields[HeuristicLabelTitle] = &title
		rec.Fields[HeuristicLabelPrice] = strPtr(current)
		if len(prices) > 1 {
			rec.Fields[HeuristicLabelOriginalPrice] = strPtr(prices[0])
		}
		if href := candidateHref(sel); href != "" {
			rec.Fields[HeuristicLabelURL] = strPtr(absolutize(href, base))
		}
		if src := candidateImage(sel); src != "" {
			rec.Fields[HeuristicLabelImage] = strPtr(absolutize(src, base))
		}

		records = append(records, rec)
		return true
	})

	return records, nil
}

// firstTitleLine returns the first content line that looks like a product
// title: several words, not just a price, and sharing vocabulary with the
// keyword set when any line does.
func firstTitleLine(text string, keywords []string) string {
	lines := strings.Split(text, "\n")
	fallback := ""
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || rePrice.MatchString(line) && len(rePrice.ReplaceAllString(line, "")) < 3 {
			continue
		}
		if len(strings.Fields(line)) < 2 {
			continue
		}
		if containsKeyword(line, keywords) {
			return line
		}
		if fallback == "" {
			fallback = line
		}
	}
	return fallback
}

func containsKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if containsWord(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// containsWord matches kw as a whole token, so "v" matches "18v teardown"
// bundles like "18v" via suffix but not arbitrary substrings.
func containsWord(text, kw string) bool {
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ',' || r == '/' || r == '(' || r == ')'
	}) {
		if tok == kw || strings.HasSuffix(tok, kw) && len(kw) <= 2 && len(tok) <= len(kw)+3 {
			return true
		}
	}
	return false
}

func candidateHref(sel *goquery.Selection) string {
	if href, ok := sel.Attr("href"); ok && href != "" {
		return href
	}
	if href, ok := sel.Find("a[href]").First().Attr("href"); ok {
		return href
	}
	return ""
}

func candidateImage(sel *goquery.Selection) string {
	img := sel.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	if srcset, ok := img.Attr("srcset"); ok && srcset != "" {
		if u := lastSrcsetURL(srcset); u != "" {
			return u
		}
	}
	for _, attr := range srcFallbackAttrs {
		if v, ok := img.Attr(attr); ok && v != "" {
			return v
		}
	}
	return ""
}

func strPtr(s string) *string { return &s }
