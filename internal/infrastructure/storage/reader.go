package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"OhtaniScanner/internal/domain"
	"OhtaniScanner/internal/ports"
)

const defaultListLimit = 20

// PostgresReader serves the read-only query surface over persisted articles.
type PostgresReader struct {
	db *sql.DB
}

var _ ports.ArticleReader = (*PostgresReader)(nil)

// NewPostgresReader wires a sql.DB implementation.
func NewPostgresReader(db *sql.DB) *PostgresReader {
	return &PostgresReader{db: db}
}

func articleSelect() sq.SelectBuilder {
	return psql.Select(
		"a.id",
		"a.source_id",
		"a.url",
		"COALESCE(a.title, '')",
		"COALESCE(a.excerpt, '')",
		"a.published_at",
		"a.fetched_hash",
		"a.is_otani",
		"COALESCE(a.thumbnail, '')",
		"COALESCE(s.name, '')",
		"COALESCE(s.icon_url, '')",
	).
		From("articles a").
		LeftJoin("sources s ON s.id = a.source_id")
}

// List returns articles ordered by published time descending, nulls last,
// narrowed by the filter. Limit and offset pass through from the caller.
func (r *PostgresReader) List(ctx context.Context, filter ports.ListFilter) ([]domain.ArticleView, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := articleSelect().
		OrderBy("a.published_at DESC NULLS LAST").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	if filter.OtaniOnly {
		query = query.Where(sq.Eq{"a.is_otani": true})
	}
	if filter.SourceID != 0 {
		query = query.Where(sq.Eq{"a.source_id": filter.SourceID})
	}

	return r.queryViews(ctx, query)
}

// GetByID fetches a single article; ports.ErrNotFound when absent.
func (r *PostgresReader) GetByID(ctx context.Context, id int64) (domain.ArticleView, error) {
	sqlStr, args, err := articleSelect().Where(sq.Eq{"a.id": id}).ToSql()
	if err != nil {
		return domain.ArticleView{}, fmt.Errorf("build article query: %w", err)
	}

	view, err := scanView(r.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ArticleView{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.ArticleView{}, fmt.Errorf("get article %d: %w", id, err)
	}

	return view, nil
}

// ListSources returns all stored sources ordered by name.
func (r *PostgresReader) ListSources(ctx context.Context) ([]domain.Source, error) {
	sqlStr, args, err := psql.Select(
		"id", "name", "COALESCE(rss_url, '')", "COALESCE(base_url, '')", "COALESCE(icon_url, '')",
	).From("sources").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sources query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		var s domain.Source
		if err := rows.Scan(&s.ID, &s.Name, &s.RSSURL, &s.BaseURL, &s.IconURL); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}

	return sources, nil
}

// ListRecent returns the newest articles for syndication output.
func (r *PostgresReader) ListRecent(ctx context.Context, limit int) ([]domain.ArticleView, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := articleSelect().
		OrderBy("a.published_at DESC NULLS LAST").
		Limit(uint64(limit))

	return r.queryViews(ctx, query)
}

// ListSitemapEntries returns the minimal url/published projection.
func (r *PostgresReader) ListSitemapEntries(ctx context.Context, limit int) ([]domain.SitemapEntry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	sqlStr, args, err := psql.Select("url", "published_at").
		From("articles").
		OrderBy("published_at DESC NULLS LAST").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sitemap query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list sitemap entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.SitemapEntry
	for rows.Next() {
		var (
			entry     domain.SitemapEntry
			published sql.NullTime
		)
		if err := rows.Scan(&entry.URL, &published); err != nil {
			return nil, fmt.Errorf("scan sitemap entry: %w", err)
		}
		entry.PublishedAt = timePtr(published)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sitemap entries: %w", err)
	}

	return entries, nil
}

func (r *PostgresReader) queryViews(ctx context.Context, query sq.SelectBuilder) ([]domain.ArticleView, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build articles query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var views []domain.ArticleView
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}

	return views, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanView(row rowScanner) (domain.ArticleView, error) {
	var (
		view      domain.ArticleView
		published sql.NullTime
	)
	err := row.Scan(
		&view.ID,
		&view.SourceID,
		&view.URL,
		&view.Title,
		&view.Excerpt,
		&published,
		&view.FetchedHash,
		&view.IsOtani,
		&view.Thumbnail,
		&view.SourceName,
		&view.SourceIcon,
	)
	if err != nil {
		return domain.ArticleView{}, err
	}
	view.PublishedAt = timePtr(published)
	return view, nil
}
