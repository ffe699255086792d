package feed

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"OhtaniScanner/internal/domain"
	"OhtaniScanner/internal/ports"
)

const (
	requestTimeout = 20 * time.Second
	userAgent      = "OhtaniScanner/1.0 (+https://example.com)"
	excerptLimit   = 1000
)

// HTTPSource fetches RSS/Atom documents over HTTP and normalizes their items
// into feed entries. Each fetch is a single attempt; retries are left to the
// next scheduled run.
type HTTPSource struct {
	parser *gofeed.Parser
	strip  *bluemonday.Policy
}

var _ ports.FeedSource = (*HTTPSource)(nil)

// NewHTTPSource wires a gofeed parser; a nil client gets the fixed-timeout default.
func NewHTTPSource(client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent

	return &HTTPSource{
		parser: parser,
		strip:  bluemonday.StrictPolicy(),
	}
}

// FetchEntries retrieves the feed document and returns its entries in
// document order. Items without a link are dropped.
func (s *HTTPSource) FetchEntries(ctx context.Context, feedURL string) ([]domain.FeedEntry, error) {
	parsed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}

	entries := make([]domain.FeedEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}

		entries = append(entries, domain.FeedEntry{
			Link:        item.Link,
			Title:       strings.TrimSpace(item.Title),
			Excerpt:     s.buildExcerpt(item.Description),
			PublishedAt: publishedTime(item),
			Thumbnail:   extractThumbnail(item),
		})
	}

	return entries, nil
}

// buildExcerpt strips markup from the raw summary and bounds its length.
func (s *HTTPSource) buildExcerpt(summary string) string {
	if summary == "" {
		return ""
	}
	text := html.UnescapeString(s.strip.Sanitize(summary))
	return truncateRunes(strings.TrimSpace(text), excerptLimit)
}

// publishedTime prefers the published date, falls back to the updated date,
// and reports absence when neither parses.
func publishedTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed
	}
	return nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
