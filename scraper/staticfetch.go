package scraper

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	tls2 "github.com/refraction-networking/utls"
	"golang.org/x/net/html"

	"github.com/Modzmart2112/Tracker-sub001/config"
	"github.com/Modzmart2112/Tracker-sub001/extract"
)

const staticChromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// bodyLimit caps a static fetch at 10 MB.
const bodyLimit = 10 * 1024 * 1024

// StaticFetcher is the degraded, browserless fetch path: one plain HTTP GET
// with a Chrome TLS fingerprint, parsed into a DocumentQuery. It cannot
// paginate or run JS, so jobs only reach it when they opt in and no browser
// session could be acquired.
type StaticFetcher struct {
	cfg config.ScraperConfig
}

// NewStaticFetcher creates a static fetcher using the scraper timeouts.
func NewStaticFetcher(cfg config.ScraperConfig) *StaticFetcher {
	return &StaticFetcher{cfg: cfg}
}

// Fetch retrieves and parses the target listing page. Pages whose content
// demonstrably requires JS rendering are rejected rather than silently
// extracted as empty.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string) (*extract.DocumentQuery, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.StaticFetchTimeout)
	defer cancel()

	body, err := f.get(ctx, targetURL)
	if err != nil {
		return nil, err
	}

	if needsBrowser(body) {
		return nil, fmt.Errorf("staticfetch: %s requires JS rendering", targetURL)
	}

	base, err := url.Parse(targetURL)
	if err != nil {
		base = nil
	}
	return extract.NewDocumentQuery(string(body), base)
}

func (f *StaticFetcher) get(ctx context.Context, targetURL string) ([]byte, error) {
	transport := &http.Transport{
		DialTLSContext: dialTLSChrome,
	}
	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("staticfetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", staticChromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("staticfetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("staticfetch: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	var reader io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, gzErr := gzip.NewReader(resp.Body)
		if gzErr != nil {
			return nil, fmt.Errorf("staticfetch: gzip: %w", gzErr)
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(io.LimitReader(reader, bodyLimit))
	if err != nil {
		return nil, fmt.Errorf("staticfetch: read body: %w", err)
	}
	return body, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via
// utls, so the degraded path is not trivially distinguishable from a browser
// at the TLS layer.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName: host,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

var reNoscript = regexp.MustCompile(`<noscript[^>]*>[^<]*(enable|activate|turn on|requires?)\s+javascript`)

// needsBrowser uses heuristics to decide if the fetched HTML likely needs
// JS rendering (SPA shell, noscript warnings, JS-heavy near-empty body).
func needsBrowser(body []byte) bool {
	bodyText := extractVisibleText(body)

	// Very little visible text in <body> → likely SPA shell.
	if len(bodyText) < 200 {
		return true
	}

	lower := strings.ToLower(string(body))

	for _, root := range []string{`<div id="root"></div>`, `<div id="app"></div>`, `<div id="__next"></div>`} {
		if strings.Contains(lower, root) {
			return true
		}
	}

	if reNoscript.MatchString(lower) {
		return true
	}

	// Many <script> tags + little body text → JS-heavy page.
	if strings.Count(lower, "<script") > 10 && len(bodyText) < 500 {
		return true
	}

	return false
}

// extractVisibleText extracts the visible text from within <body>, stripping
// all tags and <script>/<style> content. Used for heuristic analysis only.
func extractVisibleText(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	var buf strings.Builder
	inBody := false
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "body" {
				inBody = true
			}
			if tag == "script" || tag == "style" || tag == "noscript" {
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" {
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if inBody && skipDepth == 0 {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
