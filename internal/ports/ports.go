package ports

import (
	"context"
	"errors"
	"time"

	"OhtaniScanner/internal/domain"
)

// ErrNotFound is returned by readers when a record does not exist.
var ErrNotFound = errors.New("not found")

// SourceRegistry resolves configured sources to persisted identities.
type SourceRegistry interface {
	// ListIngestable returns every stored source with a feed endpoint.
	// Failure here is fatal for an ingestion run.
	ListIngestable(ctx context.Context) ([]domain.Source, error)

	// ResolveOrCreate returns the id of the source with the given name,
	// inserting it if absent. It backfills a missing icon as a best-effort
	// side effect and is safe to call concurrently for the same name.
	ResolveOrCreate(ctx context.Context, source domain.Source) (int64, error)
}

// FeedSource retrieves a feed document and normalizes it into entries.
type FeedSource interface {
	FetchEntries(ctx context.Context, feedURL string) ([]domain.FeedEntry, error)
}

// BodyFetcher pulls bounded plain text out of an article page. Extraction is
// advisory: any failure yields an empty string, never an error.
type BodyFetcher interface {
	FetchBody(ctx context.Context, url string) string
}

// ArticleRepository persists articles with upsert-on-URL semantics.
type ArticleRepository interface {
	// Exists reports whether an article with the given URL is stored.
	Exists(ctx context.Context, url string) (bool, error)

	// Upsert inserts the article or, on a URL conflict, overwrites its
	// mutable fields. It reports whether a new row was created.
	Upsert(ctx context.Context, article domain.Article) (created bool, err error)
}

// ListFilter narrows the article list read surface.
type ListFilter struct {
	OtaniOnly bool
	SourceID  int64
	Limit     int
	Offset    int
}

// ArticleReader serves the read-only query surface consumed by the HTTP API.
type ArticleReader interface {
	List(ctx context.Context, filter ListFilter) ([]domain.ArticleView, error)
	GetByID(ctx context.Context, id int64) (domain.ArticleView, error)
	ListSources(ctx context.Context) ([]domain.Source, error)
	ListRecent(ctx context.Context, limit int) ([]domain.ArticleView, error)
	ListSitemapEntries(ctx context.Context, limit int) ([]domain.SitemapEntry, error)
}

// Scheduler controls when ingestion runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
