package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/docsift/docsift/internal/classify"
	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/extract"
	"github.com/docsift/docsift/internal/jobstore"
	"github.com/docsift/docsift/internal/pipeline"
	"github.com/docsift/docsift/internal/server"
	"github.com/docsift/docsift/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	rules, degraded, err := classify.LoadRuleSet(cfg.Rules.Path, logger)
	if err != nil {
		logger.Error("failed to load rule set", "path", cfg.Rules.Path, "error", err)
		os.Exit(1)
	}
	if degraded {
		logger.Warn("running with built-in default rules", "path", cfg.Rules.Path)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open job store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close job store", "error", err)
		}
	}()

	classifier := classify.NewClassifier(rules, logger)
	registry := extract.NewRegistry(logger)
	processor := pipeline.NewProcessor(logger, pipeline.Config{
		MinConfidence: &cfg.Pipeline.MinClassifyConfidence,
	}, classifier, registry, degraded)

	runner := worker.NewBatchRunner(processor, store, cfg.Pipeline.Parallelism, logger)
	srv := server.New(cfg.Server, processor, store, runner, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("stopped")
}

// openStore picks the job-store backend: DB_URL -> Postgres,
// DB_PATH -> SQLite, neither -> in-memory.
func openStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (jobstore.Store, error) {
	switch {
	case cfg.Store.DSN != "":
		store, err := jobstore.OpenPostgres(ctx, jobstore.PoolConfig{
			DSN:              cfg.Store.DSN,
			MaxConns:         cfg.Store.MaxConns,
			MinConns:         cfg.Store.MinConns,
			MaxConnLifetime:  cfg.Store.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Store.MaxConnIdleTime,
			DialTimeout:      cfg.Store.DialTimeout,
			StatementTimeout: cfg.Store.StatementTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := store.HealthCheck(ctx, cfg.Store.DialTimeout); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case cfg.Store.Path != "":
		return jobstore.OpenSQLite(cfg.Store.Path, logger)
	default:
		logger.Info("no database configured, using in-memory store")
		return jobstore.NewMemoryStore(), nil
	}
}
