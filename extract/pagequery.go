// Package extract applies declarative field-mapping rules against a live or
// parsed document and produces raw field records, one per matched list item.
//
// The DOM dependency is kept behind the narrow PageQuery/Element capability
// interfaces so the rule engine runs identically against a headless browser
// page and a parsed HTML document (tests, static fetch mode).
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Element is a narrow read-only handle over one DOM element.
type Element interface {
	// Text returns the trimmed text content of the element.
	Text() (string, error)

	// Attr returns the value of the named attribute, nil when absent.
	Attr(name string) (*string, error)

	// First returns the first descendant matching selector, or nil when
	// nothing matches.
	First(selector string) (Element, error)
}

// PageQuery is everything the rule engine needs from a document.
type PageQuery interface {
	// Elements returns all elements matching selector in document order.
	Elements(selector string) ([]Element, error)

	// Base returns the page URL used to absolutize relative links.
	Base() *url.URL

	// HTML returns the full document markup. The fallback heuristic and
	// the slide content hash work from this.
	HTML() (string, error)
}

// DocumentQuery is a PageQuery over a parsed HTML document (goquery).
// It backs the static fetch mode and the engine's tests.
type DocumentQuery struct {
	doc  *goquery.Document
	base *url.URL
}

// NewDocumentQuery parses rawHTML into a DocumentQuery. base may be nil when
// no absolutization context exists.
func NewDocumentQuery(rawHTML string, base *url.URL) (*DocumentQuery, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	return &DocumentQuery{doc: doc, base: base}, nil
}

func (q *DocumentQuery) Elements(selector string) ([]Element, error) {
	var els []Element
	q.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		els = append(els, docElement{sel: s})
	})
	return els, nil
}

func (q *DocumentQuery) Base() *url.URL { return q.base }

func (q *DocumentQuery) HTML() (string, error) {
	return q.doc.Html()
}

// docElement adapts a goquery selection to the Element interface.
type docElement struct {
	sel *goquery.Selection
}

func (e docElement) Text() (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}

func (e docElement) Attr(name string) (*string, error) {
	if v, ok := e.sel.Attr(name); ok {
		return &v, nil
	}
	return nil, nil
}

func (e docElement) First(selector string) (Element, error) {
	found := e.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, nil
	}
	return docElement{sel: found}, nil
}
