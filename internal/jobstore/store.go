// Package jobstore persists batch jobs and per-document processing records.
// It is glue around the core: the engine itself never touches it.
package jobstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift/internal/entity"
)

// Record is one persisted processing result.
type Record struct {
	ID        uuid.UUID               `json:"id"`
	FileName  string                  `json:"file_name"`
	Result    entity.ProcessingResult `json:"result"`
	CreatedAt time.Time               `json:"created_at"`
}

// JobStore tracks batch jobs. Implementations serialize writes per job key:
// concurrent workers may append to the same job, but each append is atomic
// and progress counts never go backwards.
type JobStore interface {
	CreateJob(ctx context.Context, totalFiles int) (*entity.BatchJob, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*entity.BatchJob, error)
	AppendResult(ctx context.Context, jobID uuid.UUID, res entity.FileResult) error
	AppendError(ctx context.Context, jobID uuid.UUID, fe entity.FileError) error
	MarkCompleted(ctx context.Context, jobID uuid.UUID) error
	MarkFailed(ctx context.Context, jobID uuid.UUID) error
}

// RecordStore persists individual processing records for later export.
type RecordStore interface {
	SaveRecord(ctx context.Context, rec Record) error
	ListRecords(ctx context.Context, from, to *time.Time) ([]Record, error)
}

// Store is the full persistence surface the glue layers depend on.
type Store interface {
	JobStore
	RecordStore
	Close() error
}
