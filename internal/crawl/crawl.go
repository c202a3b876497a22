// Package crawl walks the whitelisted documentation trees breadth-first.
//
// Traversal is bounded by a page cap and a visited set, so link cycles
// terminate and total fetch work has a hard upper bound. A single page
// failure is logged and skipped; the crawl degrades to a smaller result
// rather than failing outright. When the cap truncates traversal, which
// pages are included depends on breadth-first order; that is an accepted
// approximation.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/navassist/docbot/internal/fetch"
	"github.com/navassist/docbot/internal/scope"
)

// DefaultMaxPages bounds the crawl when no cap is configured.
const DefaultMaxPages = 40

// nonDocExtensions are link targets that are never documentation pages.
var nonDocExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {}, ".ico": {},
	".css": {}, ".js": {}, ".mjs": {},
	".pdf": {}, ".zip": {}, ".tar": {}, ".gz": {}, ".tgz": {}, ".rar": {}, ".7z": {},
	".mp3": {}, ".mp4": {}, ".avi": {}, ".mov": {}, ".webm": {}, ".wav": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {}, ".otf": {},
}

// Page is one crawled documentation page.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Fetcher is the page retrieval behavior the crawler depends on.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

// Crawler performs the bounded breadth-first traversal.
type Crawler struct {
	fetcher  Fetcher
	scope    *scope.Scope
	maxPages int
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New creates a Crawler seeded by the scope's base prefixes.
// delay spaces out successive fetches; zero disables rate limiting.
func New(fetcher Fetcher, sc *scope.Scope, maxPages int, delay time.Duration, logger *slog.Logger) *Crawler {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{
		fetcher:  fetcher,
		scope:    sc,
		maxPages: maxPages,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

// Crawl traverses the documentation trees and returns the deduplicated
// page set, at most maxPages long.
func (c *Crawler) Crawl(ctx context.Context) ([]Page, error) {
	queue := c.scope.Bases()
	enqueued := make(map[string]struct{}, c.maxPages)
	for _, u := range queue {
		enqueued[u] = struct{}{}
	}
	visited := make(map[string]struct{}, c.maxPages)

	start := time.Now()
	var pages []Page
	for len(queue) > 0 && len(pages) < c.maxPages {
		current := queue[0]
		queue = queue[1:]

		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}

		if err := c.limiter.Wait(ctx); err != nil {
			return pages, err
		}

		pg, err := c.fetcher.Fetch(ctx, current)
		if err != nil {
			c.logger.Warn("skipping page", "url", current, "error", err)
			continue
		}
		pages = append(pages, Page{URL: current, Title: pg.Title, Text: pg.Text})

		base, ok := c.scope.Match(current)
		if !ok {
			continue
		}
		for _, link := range pg.Links {
			link = stripFragment(link)
			if link == "" || !documentLike(link) {
				continue
			}
			if b, ok := c.scope.Match(link); !ok || b != base {
				continue
			}
			if _, seen := visited[link]; seen {
				continue
			}
			if _, queued := enqueued[link]; queued {
				continue
			}
			if len(enqueued) >= c.maxPages {
				continue
			}
			enqueued[link] = struct{}{}
			queue = append(queue, link)
		}
	}

	c.logger.Info("crawl complete",
		"pages", len(pages),
		"visited", len(visited),
		"duration", time.Since(start))
	return pages, nil
}

// stripFragment removes the #fragment part of a URL. A fragment-only
// reference collapses to its own page, which the visited set then skips.
func stripFragment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

// documentLike reports whether the link plausibly targets a document
// rather than an asset (image, stylesheet, script, archive, media, font).
func documentLike(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	_, asset := nonDocExtensions[ext]
	return !asset
}
