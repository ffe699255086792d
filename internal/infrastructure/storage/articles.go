package storage

import (
	"context"
	"database/sql"
	"fmt"

	"OhtaniScanner/internal/domain"
	"OhtaniScanner/internal/ports"
)

// PostgresArticles persists articles into Postgres with upsert-on-URL
// semantics. The unique constraint on articles.url is the correctness
// mechanism under concurrent duplicate attempts.
type PostgresArticles struct {
	db *sql.DB
}

var _ ports.ArticleRepository = (*PostgresArticles)(nil)

// NewPostgresArticles wires a sql.DB implementation.
func NewPostgresArticles(db *sql.DB) *PostgresArticles {
	return &PostgresArticles{db: db}
}

// Exists reports whether an article with the given URL is already stored.
func (r *PostgresArticles) Exists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE url = $1)`, url,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article %s: %w", url, err)
	}
	return exists, nil
}

// Upsert inserts the article or, on a URL conflict, overwrites the mutable
// fields only; source linkage and fetched_hash stay as first written.
// xmax = 0 holds exactly for freshly inserted rows, which distinguishes
// creates from updates in a single statement.
func (r *PostgresArticles) Upsert(ctx context.Context, article domain.Article) (bool, error) {
	query := `INSERT INTO articles (source_id, url, title, published_at, excerpt, fetched_hash, is_otani, thumbnail)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              ON CONFLICT (url) DO UPDATE
              SET title = EXCLUDED.title,
                  excerpt = EXCLUDED.excerpt,
                  published_at = EXCLUDED.published_at,
                  is_otani = EXCLUDED.is_otani,
                  thumbnail = EXCLUDED.thumbnail
              RETURNING (xmax = 0)`

	var created bool
	err := r.db.QueryRowContext(ctx, query,
		article.SourceID,
		article.URL,
		nullString(article.Title),
		nullTime(article.PublishedAt),
		nullString(article.Excerpt),
		article.FetchedHash,
		article.IsOtani,
		nullString(article.Thumbnail),
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upsert article %s: %w", article.URL, err)
	}

	return created, nil
}
