package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docsift/docsift/internal/classify"
	"github.com/docsift/docsift/internal/export"
	"github.com/docsift/docsift/internal/extract"
	"github.com/docsift/docsift/internal/ingest"
	"github.com/docsift/docsift/internal/jobstore"
	"github.com/docsift/docsift/internal/pipeline"
	"github.com/docsift/docsift/internal/worker"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir      = flag.String("dir", "", "directory to process documents from (required)")
		out      = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		rules    = flag.String("rules", "", "path to a category rule-set JSON file (optional)")
		parallel = flag.Int("parallel", 4, "number of documents processed in parallel")
		minConf  = flag.Float64("min-confidence", 0.60, "classification confidence gate for extraction")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		parentDir := filepath.Dir(*dir)
		*out = filepath.Join(parentDir, "documents.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	ruleSet, degraded, err := classify.LoadRuleSet(*rules, logger)
	if err != nil {
		logger.Error("failed to load rule set", "path", *rules, "error", err)
		os.Exit(1)
	}
	if degraded {
		logger.Warn("running with built-in default rules", "path", *rules)
	}

	classifier := classify.NewClassifier(ruleSet, logger)
	registry := extract.NewRegistry(logger)
	processor := pipeline.NewProcessor(logger, pipeline.Config{
		MinConfidence: minConf,
	}, classifier, registry, degraded)

	store := jobstore.NewMemoryStore()
	defer func() { _ = store.Close() }()

	ingestor := ingest.NewFSIngestor(logger)

	logger.Info("scanning directory", "dir", *dir)
	docs, _, stats, err := ingestor.ReadDirectory(ctx, *dir, true)
	if err != nil {
		logger.Error("failed to read directory", "error", err)
		os.Exit(1)
	}
	logger.Info("scan complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	if len(docs) == 0 {
		printError("No matching documents found under %s\n", *dir)
		os.Exit(1)
	}

	job, err := store.CreateJob(ctx, len(docs))
	if err != nil {
		logger.Error("failed to create job", "error", err)
		os.Exit(1)
	}

	runner := worker.NewBatchRunner(processor, store, *parallel, logger)
	if err := runner.Run(ctx, job, docs); err != nil {
		logger.Error("batch run failed", "error", err)
		os.Exit(1)
	}

	final, err := store.GetJob(ctx, job.ID)
	if err != nil {
		logger.Error("failed to fetch job", "error", err)
		os.Exit(1)
	}

	logger.Info("exporting to XLSX", "output", *out)
	exportService := export.NewService(store, logger)
	xlsxBytes, err := exportService.ExportRecordsXLSX(ctx, nil, nil)
	if err != nil {
		logger.Error("failed to export records", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"files_processed", final.Processed,
		"failures", len(final.Errors),
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files processed: %d\n", final.Processed)
	fmt.Printf("- Failures: %d\n", len(final.Errors))
	fmt.Printf("- Output: %s\n", *out)
}
