package content

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"OhtaniScanner/internal/ports"
)

const (
	requestTimeout = 20 * time.Second
	userAgent      = "OhtaniScanner/1.0 (+https://example.com)"
	contentLimit   = 5000
)

// Extractor pulls a bounded plain-text body out of an article page.
// Extraction is advisory: classification works from title and excerpt alone
// when a page cannot be fetched or parsed, so every failure maps to "".
type Extractor struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.BodyFetcher = (*Extractor)(nil)

// NewExtractor wires an HTTP client; a nil client gets the fixed-timeout default.
func NewExtractor(client *http.Client, logger *slog.Logger) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Extractor{client: client, logger: logger}
}

// FetchBody downloads the page and joins the text of paragraph- and
// article-level elements, bounded to contentLimit runes.
func (e *Extractor) FetchBody(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		e.debug("build request", pageURL, err)
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		e.debug("request page", pageURL, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.debug("request page", pageURL, nil, "status", resp.Status)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		e.debug("parse page", pageURL, err)
		return ""
	}

	return extractText(doc)
}

func extractText(doc *goquery.Document) string {
	var parts []string
	doc.Find("p, article").Each(func(i int, sel *goquery.Selection) {
		if text := strings.Join(strings.Fields(sel.Text()), " "); text != "" {
			parts = append(parts, text)
		}
	})

	joined := strings.Join(parts, " ")
	runes := []rune(joined)
	if len(runes) > contentLimit {
		return string(runes[:contentLimit])
	}
	return joined
}

func (e *Extractor) debug(msg, url string, err error, args ...any) {
	if e.logger == nil {
		return
	}
	fields := []any{"url", url}
	if err != nil {
		fields = append(fields, "error", err)
	}
	fields = append(fields, args...)
	e.logger.Debug(msg, fields...)
}
