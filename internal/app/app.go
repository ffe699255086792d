package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"OhtaniScanner/internal/classify"
	"OhtaniScanner/internal/config"
	"OhtaniScanner/internal/domain"
	"OhtaniScanner/internal/infrastructure/content"
	"OhtaniScanner/internal/infrastructure/feed"
	"OhtaniScanner/internal/infrastructure/httpapi"
	cronscheduler "OhtaniScanner/internal/infrastructure/scheduler"
	"OhtaniScanner/internal/infrastructure/storage"
	"OhtaniScanner/internal/logging"
	"OhtaniScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	api       *httpapi.Server
}

// New opens the storage handle and builds all components.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	registry := storage.NewPostgresRegistry(db, baseLogger.With("component", "registry"))
	articles := storage.NewPostgresArticles(db)
	reader := storage.NewPostgresReader(db)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry:    registry,
		Feed:        feed.NewHTTPSource(nil),
		Body:        content.NewExtractor(nil, baseLogger.With("component", "extractor")),
		Repository:  articles,
		Classifier:  classify.New(cfg.Ingest.Keywords),
		Seeds:       seedSources(cfg.Sources),
		Concurrency: cfg.Ingest.MaxConcurrentSources,
		Logger:      baseLogger.With("component", "pipeline"),
	})

	driver := cronscheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	scheduler := usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))

	api := httpapi.NewServer(reader, cfg.Server.SiteURL, baseLogger.With("component", "api"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		pipeline:  pipeline,
		scheduler: scheduler,
		api:       api,
	}, nil
}

// RunOnce executes a single ingestion pass and exits.
func (a *Application) RunOnce(ctx context.Context) error {
	defer a.close()

	stats, err := a.pipeline.ProcessRun(ctx)
	if err != nil {
		return fmt.Errorf("ingestion run: %w", err)
	}
	a.logger.Info("single run complete", "created", stats.Created, "updated", stats.Updated)
	return nil
}

// Run starts the cron-driven pipeline and the read API, then blocks until the
// context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           a.api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("api listening", "addr", server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = a.scheduler.Stop(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api server: %w", err)
	}

	return nil
}

func (a *Application) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("close storage", "error", err)
		}
	}
}

func seedSources(configured []config.SourceConfig) []domain.Source {
	seeds := make([]domain.Source, 0, len(configured))
	for _, src := range configured {
		seeds = append(seeds, domain.Source{
			Name:    src.Name,
			RSSURL:  src.RSSURL,
			BaseURL: src.BaseURL,
		})
	}
	return seeds
}
