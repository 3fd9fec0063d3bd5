package extract

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-rod/rod"
)

// RodPage adapts a live rod page to the PageQuery interface. All queries run
// against the page's current DOM, so already-rendered src attributes are
// readable even when the image network fetches themselves were blocked.
type RodPage struct {
	page *rod.Page
	base *url.URL
}

// NewRodPage wraps a rod page. The base URL is captured lazily on first use
// so it reflects the page's post-redirect location.
func NewRodPage(page *rod.Page) *RodPage {
	return &RodPage{page: page}
}

func (p *RodPage) Elements(selector string) ([]Element, error) {
	matched, err := p.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	els := make([]Element, 0, len(matched))
	for _, el := range matched {
		els = append(els, rodElement{el: el})
	}
	return els, nil
}

func (p *RodPage) Base() *url.URL {
	if p.base != nil {
		return p.base
	}
	info, err := p.page.Info()
	if err != nil {
		return nil
	}
	base, err := url.Parse(info.URL)
	if err != nil {
		return nil
	}
	p.base = base
	return base
}

func (p *RodPage) HTML() (string, error) {
	return p.page.HTML()
}

// rodElement adapts a rod element handle to the Element interface.
type rodElement struct {
	el *rod.Element
}

func (e rodElement) Text() (string, error) {
	text, err := e.el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (e rodElement) Attr(name string) (*string, error) {
	return e.el.Attribute(name)
}

func (e rodElement) First(selector string) (Element, error) {
	// NotFoundSleeper makes the lookup return immediately instead of
	// polling for the element to appear; absence is a normal outcome here.
	found, err := e.el.Sleeper(rod.NotFoundSleeper).Element(selector)
	if err != nil {
		if isElementNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return rodElement{el: found}, nil
}

// isElementNotFound reports whether err means the selector matched nothing,
// as opposed to a transport or protocol failure.
func isElementNotFound(err error) bool {
	var notFound *rod.ElementNotFoundError
	return errors.As(err, &notFound)
}
