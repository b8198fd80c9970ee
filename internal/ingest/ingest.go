// Package ingest crawls legal source pages and converts them into
// indexable documents.
//
// The crawler is polite by construction: it only visits configured
// domains, limits parallelism, and spaces requests. Extraction works in
// two passes per page: readability isolates the main text for a
// page-level document, then anchored articles (id="cl68" and similar)
// become one document each so retrieval can cite the exact provision.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/pravnik0/pravnik/internal/document"
)

// Config tunes the crawler.
type Config struct {
	// AllowedDomains restricts the crawl. Empty allows any domain, which
	// is only sensible in tests.
	AllowedDomains []string

	// Parallelism bounds concurrent requests (default 2).
	Parallelism int

	// Delay spaces requests to the same domain (default 1s).
	Delay time.Duration

	// MaxDepth bounds link following; 1 fetches only the start pages.
	MaxDepth int

	UserAgent string
}

// Crawler fetches pages and extracts documents from them.
type Crawler struct {
	cfg    Config
	logger *slog.Logger
}

// NewCrawler creates a crawler.
func NewCrawler(cfg Config, logger *slog.Logger) *Crawler {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 2
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 1
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "pravnik-ingest/1.0"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{cfg: cfg, logger: logger}
}

// Crawl visits the start URLs and returns the extracted documents.
// Fetch errors on individual pages are logged and skipped; Crawl fails
// only when the crawler itself cannot be built or no page succeeded.
func (c *Crawler) Crawl(ctx context.Context, startURLs ...string) ([]document.Document, error) {
	if len(startURLs) == 0 {
		return nil, fmt.Errorf("at least one start URL is required")
	}

	opts := []colly.CollectorOption{
		colly.UserAgent(c.cfg.UserAgent),
		colly.MaxDepth(c.cfg.MaxDepth),
		colly.Async(true),
	}
	if len(c.cfg.AllowedDomains) > 0 {
		opts = append(opts, colly.AllowedDomains(c.cfg.AllowedDomains...))
	}
	collector := colly.NewCollector(opts...)

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: c.cfg.Parallelism,
		Delay:       c.cfg.Delay,
	}); err != nil {
		return nil, fmt.Errorf("configuring crawl limits: %w", err)
	}

	var (
		mu   sync.Mutex
		docs []document.Document
	)

	collector.OnHTML("html", func(e *colly.HTMLElement) {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pageDocs, err := ExtractPage(e.Request.URL, e.Response.Body)
		if err != nil {
			c.logger.Warn("extracting page failed",
				"url", e.Request.URL.String(), "error", err)
			return
		}

		mu.Lock()
		docs = append(docs, pageDocs...)
		mu.Unlock()

		c.logger.Debug("page extracted",
			"url", e.Request.URL.String(), "documents", len(pageDocs))
	})

	collector.OnError(func(r *colly.Response, err error) {
		c.logger.Warn("fetching page failed",
			"url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
	})

	for _, u := range startURLs {
		if err := collector.Visit(u); err != nil {
			c.logger.Warn("visiting start URL failed", "url", u, "error", err)
		}
	}
	collector.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("crawl canceled: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents extracted from %d start URLs", len(startURLs))
	}

	mu.Lock()
	defer mu.Unlock()
	return dedupe(docs), nil
}

// dedupe drops documents with repeated IDs, keeping the first occurrence.
func dedupe(docs []document.Document) []document.Document {
	seen := make(map[string]struct{}, len(docs))
	out := docs[:0]
	for _, d := range docs {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	return out
}

// WriteJSON stores documents as a JSON array, the interchange format
// between the ingest and serve commands.
func WriteJSON(path string, docs []document.Document) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadJSON loads documents written by WriteJSON.
func ReadJSON(path string) ([]document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var docs []document.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return docs, nil
}
