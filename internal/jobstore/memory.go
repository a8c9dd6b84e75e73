package jobstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/entity"
)

// MemoryStore keeps jobs and records in process memory. It is the default
// backend for the API server and for tests; state does not survive restarts.
type MemoryStore struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]*entity.BatchJob
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[uuid.UUID]*entity.BatchJob)}
}

func (s *MemoryStore) CreateJob(_ context.Context, totalFiles int) (*entity.BatchJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	job := &entity.BatchJob{
		ID:         uuid.New(),
		Status:     constants.JobStatusProcessing,
		TotalFiles: totalFiles,
		Results:    []entity.FileResult{},
		Errors:     []entity.FileError{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.jobs[job.ID] = job
	return cloneJob(job), nil
}

func (s *MemoryStore) GetJob(_ context.Context, jobID uuid.UUID) (*entity.BatchJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneJob(job), nil
}

func (s *MemoryStore) AppendResult(_ context.Context, jobID uuid.UUID, res entity.FileResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return common.ErrNotFound
	}
	job.Results = append(job.Results, res)
	bumpProgress(job)
	return nil
}

func (s *MemoryStore) AppendError(_ context.Context, jobID uuid.UUID, fe entity.FileError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return common.ErrNotFound
	}
	job.Errors = append(job.Errors, fe)
	bumpProgress(job)
	return nil
}

func (s *MemoryStore) MarkCompleted(_ context.Context, jobID uuid.UUID) error {
	return s.setStatus(jobID, constants.JobStatusCompleted)
}

func (s *MemoryStore) MarkFailed(_ context.Context, jobID uuid.UUID) error {
	return s.setStatus(jobID, constants.JobStatusFailed)
}

func (s *MemoryStore) setStatus(jobID uuid.UUID, status constants.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return common.ErrNotFound
	}
	job.Status = status
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) SaveRecord(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryStore) ListRecords(_ context.Context, from, to *time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if from != nil && r.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && r.CreatedAt.After(*to) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

func bumpProgress(job *entity.BatchJob) {
	job.Processed++
	if job.TotalFiles > 0 {
		job.Progress = float64(job.Processed) / float64(job.TotalFiles) * 100
	}
	job.UpdatedAt = time.Now().UTC()
}

func cloneJob(job *entity.BatchJob) *entity.BatchJob {
	out := *job
	out.Results = append([]entity.FileResult(nil), job.Results...)
	out.Errors = append([]entity.FileError(nil), job.Errors...)
	return &out
}
