package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/docsift/docsift/internal/entity"
	"github.com/docsift/docsift/internal/ingest"
	"github.com/docsift/docsift/internal/jobstore"
	"github.com/docsift/docsift/internal/pipeline"
)

// DocJob processes one document and records the outcome in the job store.
type DocJob struct {
	Doc       ingest.Document
	Processor *pipeline.Processor
	Store     jobstore.Store
	Job       *entity.BatchJob
}

// DocResult represents the result of processing one document
type DocResult struct {
	FileName string
	Result   *entity.ProcessingResult
	Error    error
}

// GetError returns the error from the document result
func (r *DocResult) GetError() error {
	return r.Error
}

func (j *DocJob) Execute(ctx context.Context) Result {
	res := j.Processor.Process(j.Doc.Text, j.Doc.Metadata)

	fr := entity.FileResult{
		FileName: j.Doc.FileName,
		Status:   "processed",
		Result:   res,
	}
	if err := j.Store.AppendResult(ctx, j.Job.ID, fr); err != nil {
		return &DocResult{FileName: j.Doc.FileName, Error: err}
	}
	rec := jobstore.Record{
		ID:        res.ID,
		FileName:  j.Doc.FileName,
		Result:    *res,
		CreatedAt: time.Now().UTC(),
	}
	if err := j.Store.SaveRecord(ctx, rec); err != nil {
		return &DocResult{FileName: j.Doc.FileName, Error: err}
	}
	return &DocResult{FileName: j.Doc.FileName, Result: res}
}

// BatchRunner processes a set of documents against a batch job. With
// concurrency 1 documents are processed in submission order.
type BatchRunner struct {
	processor   *pipeline.Processor
	store       jobstore.Store
	concurrency int
	logger      *slog.Logger
}

func NewBatchRunner(processor *pipeline.Processor, store jobstore.Store, concurrency int, logger *slog.Logger) *BatchRunner {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchRunner{
		processor:   processor,
		store:       store,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run processes docs under the given job and marks it completed. Per-file
// failures are recorded on the job; only store-level failures abort the run.
func (b *BatchRunner) Run(ctx context.Context, job *entity.BatchJob, docs []ingest.Document) error {
	b.logger.Info("batch.start", "job_id", job.ID, "files", len(docs), "concurrency", b.concurrency)

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, doc := range docs {
		pool.Submit(&DocJob{
			Doc:       doc,
			Processor: b.processor,
			Store:     b.store,
			Job:       job,
		})
	}

	results := pool.Wait()

	var failed int
	for _, r := range results {
		dr := r.(*DocResult)
		if dr.Error == nil {
			continue
		}
		failed++
		fe := entity.FileError{FileName: dr.FileName, Error: dr.Error.Error()}
		if err := b.store.AppendError(ctx, job.ID, fe); err != nil {
			b.logger.Error("batch.append_error failed", "job_id", job.ID, "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		b.logger.Warn("batch.aborted", "job_id", job.ID, "error", err)
		if markErr := b.store.MarkFailed(context.WithoutCancel(ctx), job.ID); markErr != nil {
			b.logger.Error("batch.mark_failed failed", "job_id", job.ID, "error", markErr)
		}
		return err
	}

	if err := b.store.MarkCompleted(ctx, job.ID); err != nil {
		b.logger.Error("batch.mark_completed failed", "job_id", job.ID, "error", err)
		return err
	}
	b.logger.Info("batch.done", "job_id", job.ID, "files", len(docs), "failed", failed)
	return nil
}
