package scraper

import (
	"strings"
	"testing"
)

func richBody(n int) string {
	return strings.Repeat("Plenty of visible catalog text here. ", n)
}

func TestNeedsBrowser(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{
			"spa shell",
			`<html><body><div id="root"></div><script src="/app.js"></script></body></html>`,
			true,
		},
		{
			"next shell with filler",
			`<html><body><div id="__next"></div>` + richBody(20) + `</body></html>`,
			true,
		},
		{
			"server rendered catalog",
			`<html><body><h1>Shop</h1>` + richBody(20) + `</body></html>`,
			false,
		},
		{
			"noscript warning",
			`<html><body>` + richBody(20) + `<noscript>Please enable JavaScript to view this site</noscript></body></html>`,
			true,
		},
		{
			"near empty body",
			`<html><body><p>Loading...</p></body></html>`,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsBrowser([]byte(tt.html)); got != tt.want {
				t.Errorf("needsBrowser = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractVisibleText(t *testing.T) {
	html := `<html><head><title>ignored</title><style>body{}</style></head>
<body><h1>Shop</h1><script>var x = "hidden";</script><p>Visible text</p></body></html>`

	text := extractVisibleText([]byte(html))

	if !strings.Contains(text, "Shop") || !strings.Contains(text, "Visible text") {
		t.Errorf("visible text missing body content: %q", text)
	}
	if strings.Contains(text, "hidden") {
		t.Errorf("script content leaked into visible text: %q", text)
	}
	if strings.Contains(text, "ignored") {
		t.Errorf("head content leaked into visible text: %q", text)
	}
}
