package extract

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/Modzmart2112/Tracker-sub001/models"
)

// srcFallbackAttrs is the fixed lookup order for image sources after the
// srcset variants. Lazy-load libraries stash the real URL in data-* attrs
// while src holds a placeholder.
var srcFallbackAttrs = []string{"src", "data-src", "data-lazy"}

// Structural is the selector-driven extraction strategy: for each element
// matching the configured list selector, resolve every field rule against
// the first matching descendant.
type Structural struct{}

func (Structural) Name() string { return "structural" }

// Extract walks the matched list items and produces one raw record each.
// A record missing any required field is dropped entirely. A single item
// failing to extract is logged and skipped; one bad card must not abort
// the page.
func (Structural) Extract(pq PageQuery, cfg *models.ScrapingConfig) ([]models.RawRecord, error) {
	items, err := pq.Elements(cfg.ListSelector)
	if err != nil {
		return nil, err
	}

	records := make([]models.RawRecord, 0, len(items))
	for i, item := range items {
		if cfg.MaxItems > 0 && len(records) >= cfg.MaxItems {
			break
		}

		rec, ok := extractItem(item, cfg, pq.Base(), i)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// extractItem resolves all field rules against one list item. Returns
// ok=false when the record must be dropped (required field missing or the
// element handle failed outright).
func extractItem(item Element, cfg *models.ScrapingConfig, base *url.URL, index int) (models.RawRecord, bool) {
	rec := models.RawRecord{
		Fields: make(map[string]*string, len(cfg.Fields)),
		Index:  index,
	}

	for _, f := range cfg.Fields {
		val, err := resolveField(item, f, base)
		if err != nil {
			slog.Debug("field resolution failed, skipping item",
				"label", f.Label, "selector", f.Selector, "index", index, "error", err)
			return models.RawRecord{}, false
		}
		if val == nil && f.Required {
			return models.RawRecord{}, false
		}
		rec.Fields[f.Label] = val
	}
	return rec, true
}

// resolveField locates the field's target element and reads the value per
// the configured attribute kind. nil means "no value" rather than failure.
func resolveField(item Element, f models.ScrapingField, base *url.URL) (*string, error) {
	target := item
	if f.Selector != "" {
		found, err := item.First(f.Selector)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, nil
		}
		target = found
	}

	switch f.Attribute {
	case models.AttrText:
		text, err := target.Text()
		if err != nil {
			return nil, err
		}
		if text == "" {
			return nil, nil
		}
		return &text, nil

	case models.AttrSrc:
		return resolveImageSource(target, base)

	case models.AttrHref:
		href, err := target.Attr("href")
		if err != nil || href == nil || *href == "" {
			return nil, err
		}
		abs := absolutize(*href, base)
		return &abs, nil

	case models.AttrData:
		name := f.DataAttr
		if !strings.HasPrefix(name, "data-") {
			name = "data-" + name
		}
		v, err := target.Attr(name)
		if err != nil || v == nil || *v == "" {
			return nil, err
		}
		return v, nil
	}
	return nil, nil
}

// resolveImageSource prefers the last srcset entry (highest-resolution
// variant by convention) over the plain src/data-src/data-lazy chain.
func resolveImageSource(el Element, base *url.URL) (*string, error) {
	for _, attr := range []string{"srcset", "data-srcset"} {
		v, err := el.Attr(attr)
		if err != nil {
			return nil, err
		}
		if v != nil && *v != "" {
			if u := lastSrcsetURL(*v); u != "" {
				abs := absolutize(u, base)
				return &abs, nil
			}
		}
	}

	for _, attr := range srcFallbackAttrs {
		v, err := el.Attr(attr)
		if err != nil {
			return nil, err
		}
		if v != nil && *v != "" {
			abs := absolutize(*v, base)
			return &abs, nil
		}
	}
	return nil, nil
}

// lastSrcsetURL extracts the URL of the last entry in a srcset list.
// Each entry is "url [descriptor]", entries are comma separated.
func lastSrcsetURL(srcset string) string {
	entries := strings.Split(srcset, ",")
	for i := len(entries) - 1; i >= 0; i-- {
		fields := strings.Fields(strings.TrimSpace(entries[i]))
		if len(fields) > 0 && fields[0] != "" {
			return fields[0]
		}
	}
	return ""
}

// absolutize resolves ref against base, falling back to the raw string when
// resolution is impossible.
func absolutize(ref string, base *url.URL) string {
	if base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
