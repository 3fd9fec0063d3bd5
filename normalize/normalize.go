// Package normalize turns raw extracted field maps into typed, deduplicated
// product and slide records. Raw records arrive with user-chosen labels; the
// well-known labels below map onto typed columns, everything else is dropped.
package normalize

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Modzmart2112/Tracker-sub001/models"
)

// Well-known field labels the normalizer maps onto ScrapedProduct columns.
const (
	LabelTitle    = "title"
	LabelPrice    = "price"
	LabelImage    = "image"
	LabelURL      = "url"
	LabelBrand    = "brand"
	LabelModel    = "model"
	LabelCategory = "category"
	LabelSKU      = "sku"

	// Slide labels.
	LabelLink  = "link"
	LabelLabel = "label"
)

// skuMaxTitleLen bounds the title-derived part of a generated SKU.
const skuMaxTitleLen = 24

var (
	reNonNumeric = regexp.MustCompile(`[^0-9.]`)
	reNonAlnum   = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	reHyphenRun  = regexp.MustCompile(`-+`)
)

// SiteContext carries per-job context the normalizer needs: the page origin
// for absolutization and the field rules for requiredness and dedup keys.
type SiteContext struct {
	Base   *url.URL
	Config *models.ScrapingConfig
}

// Products normalizes raw records into deduplicated products, preserving
// first-seen order per fingerprint. Records whose required price field
// fails to parse are dropped; an unparsable optional price is kept as nil.
func Products(raw []models.RawRecord, site SiteContext) []models.ScrapedProduct {
	priceRequired := fieldRequired(site.Config, LabelPrice)
	uniqueKeys := site.Config.UniqueKeyLabels()
	now := time.Now().UTC()

	seen := make(map[string]struct{}, len(raw))
	products := make([]models.ScrapedProduct, 0, len(raw))

	for _, rec := range raw {
		price, parsed := ParsePrice(rec.Get(LabelPrice))
		if !parsed && priceRequired {
			continue
		}

		title := rec.Get(LabelTitle)
		p := models.ScrapedProduct{
			Title:       title,
			Image:       Absolutize(rec.Get(LabelImage), site.Base),
			URL:         Absolutize(rec.Get(LabelURL), site.Base),
			Brand:       rec.Get(LabelBrand),
			Model:       rec.Get(LabelModel),
			Category:    rec.Get(LabelCategory),
			SKU:         rec.Get(LabelSKU),
			Provisional: rec.Provisional,
			ScrapedAt:   now,
		}
		if parsed {
			p.Price = &price
		}
		if p.Brand == "" {
			p.Brand = InferBrand(title)
		}
		if p.SKU == "" {
			p.SKU = GenerateSKU(title, rec.Index)
		}

		p.Fingerprint = recordFingerprint(&rec, uniqueKeys, p.Title, p.URL)
		if _, dup := seen[p.Fingerprint]; dup {
			continue
		}
		seen[p.Fingerprint] = struct{}{}
		products = append(products, p)
	}
	return products
}

// Slides normalizes raw records into deduplicated promo slides. Identity is
// the content fingerprint over image+link+label regardless of the job's
// unique-key configuration, because carousel positions reorder.
func Slides(raw []models.RawRecord, site SiteContext) []models.Slide {
	now := time.Now().UTC()
	seen := make(map[string]struct{}, len(raw))
	slides := make([]models.Slide, 0, len(raw))

	for _, rec := range raw {
		s := models.Slide{
			Image:     Absolutize(rec.Get(LabelImage), site.Base),
			Link:      Absolutize(firstNonEmpty(rec.Get(LabelLink), rec.Get(LabelURL)), site.Base),
			Label:     firstNonEmpty(rec.Get(LabelLabel), rec.Get(LabelTitle)),
			ScrapedAt: now,
		}
		if s.Image == "" && s.Link == "" && s.Label == "" {
			continue
		}
		s.Fingerprint = Fingerprint(s.Image, s.Link, s.Label)
		if _, dup := seen[s.Fingerprint]; dup {
			continue
		}
		seen[s.Fingerprint] = struct{}{}
		slides = append(slides, s)
	}
	return slides
}

// ParsePrice strips everything but digits and dots and parses the result as
// a decimal. ok is false for empty, unparsable, or non-positive input.
func ParsePrice(s string) (price float64, ok bool) {
	cleaned := reNonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0, false
	}
	// "1.299.00" style artifacts from thousand separators: keep the last
	// dot as the decimal point, drop the rest.
	if strings.Count(cleaned, ".") > 1 {
		last := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// InferBrand takes the first whitespace-delimited token of the title.
// Accepted to be noisy; the enrichment collaborator is the upgrade path.
func InferBrand(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// GenerateSKU derives a SKU from a sanitized slice of the title, suffixed
// with the element's page ordinal to stay unique within one page.
func GenerateSKU(title string, index int) string {
	slug := reNonAlnum.ReplaceAllString(title, "-")
	slug = reHyphenRun.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > skuMaxTitleLen {
		slug = strings.Trim(slug[:skuMaxTitleLen], "-")
	}
	if slug == "" {
		slug = "item"
	}
	return strings.ToUpper(slug) + "-" + strconv.Itoa(index)
}

// Absolutize resolves ref against base, returning the raw string unchanged
// when resolution fails or no base exists.
func Absolutize(ref string, base *url.URL) string {
	if ref == "" || base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// recordFingerprint builds the dedup identity from the record's unique-key
// values in config order. Records carrying none of the configured key fields
// (heuristic extraction does not know the configured labels) fall back to
// title+url so they don't all collapse onto one fingerprint.
func recordFingerprint(rec *models.RawRecord, uniqueKeys []string, title, pageURL string) string {
	values := make([]string, len(uniqueKeys))
	any := false
	for i, label := range uniqueKeys {
		values[i] = rec.Get(label)
		if values[i] != "" {
			any = true
		}
	}
	if !any {
		return Fingerprint(title, pageURL)
	}
	return Fingerprint(values...)
}

func fieldRequired(cfg *models.ScrapingConfig, label string) bool {
	for _, f := range cfg.Fields {
		if f.Label == label {
			return f.Required
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
