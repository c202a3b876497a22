// Package fetch retrieves documentation pages and extracts their content.
//
// Extraction is a strategy chain: an ordered list of content-region
// selectors is scanned and the first region yielding any text wins; when no
// selector matches, readability extraction is tried; the whole document is
// the last resort. Outgoing links are resolved to absolute URLs before
// being handed to the crawler.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps how much of a response we read (10MB).
	maxBodySize = 10 * 1024 * 1024

	// userAgent identifies the crawler to documentation hosts.
	userAgent = "docbot/1.0 (+https://github.com/navassist/docbot)"
)

// contentSelectors is the ordered list of content-region candidates.
// First selector that matches any element with text wins.
var contentSelectors = []string{
	"main",
	"article",
	"[role='main']",
	"#content",
	".content",
	".docs-content",
}

// Error is returned for network failures, timeouts, and non-2xx responses.
// The crawler treats it as a dead-end for that page, never as fatal.
type Error struct {
	URL        string
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Page is the extracted content of a single documentation page.
type Page struct {
	URL   string
	Title string
	Text  string
	Links []string // absolute URLs
}

// Fetcher retrieves pages over HTTP with a bounded timeout.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a Fetcher. A non-positive timeout falls back to DefaultTimeout.
func New(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch retrieves rawURL and extracts title, main text, and outgoing links.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("reading body: %w", err)}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("parsing html: %w", err)}
	}

	page := &Page{
		URL:   rawURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  f.extractText(doc, body, pageURL),
		Links: extractLinks(doc, pageURL),
	}

	f.logger.Debug("fetched page",
		"url", rawURL,
		"title", page.Title,
		"text_len", len(page.Text),
		"links", len(page.Links))
	return page, nil
}

// extractText runs the extraction strategy chain.
func (f *Fetcher) extractText(doc *goquery.Document, body []byte, pageURL *url.URL) string {
	for _, sel := range contentSelectors {
		region := doc.Find(sel)
		if region.Length() == 0 {
			continue
		}
		if text := visibleText(region); text != "" {
			return text
		}
	}

	// No content region matched; let readability take a shot before we
	// fall back to scraping the whole document.
	if article, err := readability.FromReader(bytes.NewReader(body), pageURL); err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text
		}
	}

	return visibleText(doc.Selection)
}

// visibleText collects heading, paragraph, and list-item text within the
// given region, trimmed, filtered to non-empty, joined with newlines.
func visibleText(region *goquery.Selection) string {
	var parts []string
	region.Find("h1, h2, h3, h4, h5, h6, p, li").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}

// extractLinks returns every anchor href resolved against the page URL.
// Only http(s) targets are kept.
func extractLinks(doc *goquery.Document, pageURL *url.URL) []string {
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		resolved, err := pageURL.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		links = append(links, resolved.String())
	})
	return links
}
