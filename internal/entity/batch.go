package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift/constants"
)

// FileResult is the per-file outcome recorded under a batch job.
type FileResult struct {
	FileName string            `json:"file_name"`
	Status   string            `json:"status"`
	Result   *ProcessingResult `json:"result,omitempty"`
}

// FileError records a file that failed before producing a result.
type FileError struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// BatchJob tracks a multi-file processing job in the job store.
type BatchJob struct {
	ID         uuid.UUID           `json:"id"`
	Status     constants.JobStatus `json:"status"`
	TotalFiles int                 `json:"total_files"`
	Processed  int                 `json:"processed"`
	Progress   float64             `json:"progress"` // 0..100
	Results    []FileResult        `json:"results"`
	Errors     []FileError         `json:"errors"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}
