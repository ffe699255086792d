package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"OhtaniScanner/internal/classify"
	"OhtaniScanner/internal/domain"
	"OhtaniScanner/internal/ports"
)

const defaultConcurrency = 8

// PipelineDeps wires all driven adapters into the ingestion coordinator.
type PipelineDeps struct {
	Registry    ports.SourceRegistry
	Feed        ports.FeedSource
	Body        ports.BodyFetcher
	Repository  ports.ArticleRepository
	Classifier  *classify.Classifier
	Seeds       []domain.Source
	Concurrency int
	Logger      *slog.Logger
}

// Pipeline implements the feed-ingestion workflow: concurrent multi-source
// fetch, per-entry normalization, dedup, classification, and idempotent
// upsert. A failing source never aborts its siblings; only the inability to
// list sources fails a run.
type Pipeline struct {
	registry    ports.SourceRegistry
	feed        ports.FeedSource
	body        ports.BodyFetcher
	repository  ports.ArticleRepository
	classifier  *classify.Classifier
	seeds       []domain.Source
	concurrency int
	logger      *slog.Logger
}

// RunStats summarizes one ingestion run.
type RunStats struct {
	Sources        int
	SkippedSources int64
	Created        int64
	Updated        int64
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	classifier := deps.Classifier
	if classifier == nil {
		classifier = classify.New(nil)
	}

	return &Pipeline{
		registry:    deps.Registry,
		feed:        deps.Feed,
		body:        deps.Body,
		repository:  deps.Repository,
		classifier:  classifier,
		seeds:       deps.Seeds,
		concurrency: concurrency,
		logger:      deps.Logger,
	}
}

// ProcessRun executes one ingestion pass over all ingestable sources.
// Sources run concurrently under a bounded group; entries of one source are
// processed sequentially in feed-document order.
func (p *Pipeline) ProcessRun(ctx context.Context) (RunStats, error) {
	stored, err := p.registry.ListIngestable(ctx)
	if err != nil {
		return RunStats{}, fmt.Errorf("list sources: %w", err)
	}

	sources := mergeSeeds(stored, p.seeds)

	var (
		skipped atomic.Int64
		created atomic.Int64
		updated atomic.Int64
	)

	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)

	for _, src := range sources {
		src := src
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			c, u, ok := p.processSource(ctx, src)
			if !ok {
				skipped.Add(1)
			}
			created.Add(c)
			updated.Add(u)
			return nil
		})
	}
	_ = g.Wait()

	stats := RunStats{
		Sources:        len(sources),
		SkippedSources: skipped.Load(),
		Created:        created.Load(),
		Updated:        updated.Load(),
	}

	p.info("ingestion run done",
		"sources", stats.Sources,
		"skipped_sources", stats.SkippedSources,
		"created", stats.Created,
		"updated", stats.Updated)

	return stats, ctx.Err()
}

// processSource ingests one source end to end. ok is false when the source
// had to be skipped before producing any entries.
func (p *Pipeline) processSource(ctx context.Context, src domain.Source) (created, updated int64, ok bool) {
	log := p.sourceLogger(src)

	id, err := p.registry.ResolveOrCreate(ctx, src)
	if err != nil {
		log.Error("resolve source", "error", err)
		return 0, 0, false
	}

	entries, err := p.feed.FetchEntries(ctx, src.RSSURL)
	if err != nil {
		log.Error("fetch feed", "error", err)
		return 0, 0, false
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return created, updated, true
		}
		if entry.Link == "" {
			continue
		}

		exists, err := p.repository.Exists(ctx, entry.Link)
		if err != nil {
			log.Error("check article", "url", entry.Link, "error", err)
			continue
		}
		if exists {
			continue
		}

		// Body extraction is advisory; an unreachable page still gets
		// classified from title and excerpt.
		body := p.body.FetchBody(ctx, entry.Link)
		isOtani := p.classifier.IsOtaniArticle(entry.Title, entry.Excerpt, body)

		wasCreated, err := p.repository.Upsert(ctx, domain.Article{
			SourceID:    id,
			URL:         entry.Link,
			Title:       entry.Title,
			Excerpt:     entry.Excerpt,
			PublishedAt: entry.PublishedAt,
			FetchedHash: hashURL(entry.Link),
			IsOtani:     isOtani,
			Thumbnail:   entry.Thumbnail,
		})
		if err != nil {
			log.Error("upsert article", "url", entry.Link, "error", err)
			continue
		}

		if wasCreated {
			created++
		} else {
			updated++
		}
		log.Debug("article saved", "url", entry.Link, "otani", isOtani, "created", wasCreated)
	}

	return created, updated, true
}

// mergeSeeds unions config-seeded sources with stored ones; stored identities
// win on name collisions.
func mergeSeeds(stored []domain.Source, seeds []domain.Source) []domain.Source {
	known := make(map[string]struct{}, len(stored))
	for _, s := range stored {
		known[s.Name] = struct{}{}
	}

	merged := stored
	for _, seed := range seeds {
		if _, ok := known[seed.Name]; ok {
			continue
		}
		if !seed.Ingestable() {
			continue
		}
		known[seed.Name] = struct{}{}
		merged = append(merged, seed)
	}

	return merged
}

func hashURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (p *Pipeline) sourceLogger(src domain.Source) *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.logger.With("source", src.Name, "feed", src.RSSURL)
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
