package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"OhtaniScanner/internal/domain"
	"OhtaniScanner/internal/ports"
)

// PostgresRegistry resolves and creates sources in Postgres. Concurrent
// resolve-or-create calls for the same name are arbitrated by the unique
// constraint on sources.name, not by in-process locks.
type PostgresRegistry struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ ports.SourceRegistry = (*PostgresRegistry)(nil)

// NewPostgresRegistry wires a sql.DB implementation.
func NewPostgresRegistry(db *sql.DB, logger *slog.Logger) *PostgresRegistry {
	return &PostgresRegistry{db: db, logger: logger}
}

// ListIngestable returns every stored source that has a feed endpoint.
func (r *PostgresRegistry) ListIngestable(ctx context.Context) ([]domain.Source, error) {
	query := `SELECT id, name, COALESCE(rss_url, ''), COALESCE(base_url, ''), COALESCE(icon_url, '')
              FROM sources
              WHERE rss_url IS NOT NULL AND rss_url <> ''
              ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ingestable sources: %w", err)
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

// ResolveOrCreate returns the id of the source with the given name, inserting
// it when absent. A missing icon is backfilled best-effort; backfill failures
// are logged and swallowed.
func (r *PostgresRegistry) ResolveOrCreate(ctx context.Context, source domain.Source) (int64, error) {
	var (
		id   int64
		icon string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, COALESCE(icon_url, '') FROM sources WHERE name = $1`,
		source.Name,
	).Scan(&id, &icon)

	switch {
	case err == nil:
		if icon == "" && source.BaseURL != "" {
			r.backfillIcon(ctx, id, source.BaseURL)
		}
		return id, nil
	case errors.Is(err, sql.ErrNoRows):
		return r.create(ctx, source)
	default:
		return 0, fmt.Errorf("resolve source %s: %w", source.Name, err)
	}
}

// create inserts a new source. Two runs racing on the same name both reach
// this insert; the conflict clause hands the loser the winner's id.
func (r *PostgresRegistry) create(ctx context.Context, source domain.Source) (int64, error) {
	query := `INSERT INTO sources (name, base_url, rss_url, icon_url)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
              RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		source.Name,
		nullString(source.BaseURL),
		nullString(source.RSSURL),
		nullString(FaviconURL(source.BaseURL)),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert source %s: %w", source.Name, err)
	}

	return id, nil
}

func (r *PostgresRegistry) backfillIcon(ctx context.Context, id int64, baseURL string) {
	icon := FaviconURL(baseURL)
	if icon == "" {
		return
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE sources SET icon_url = $1 WHERE id = $2`, icon, id,
	); err != nil && r.logger != nil {
		r.logger.Debug("icon backfill failed", "source_id", id, "error", err)
	}
}
