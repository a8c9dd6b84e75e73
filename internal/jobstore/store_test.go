package jobstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/entity"
)

// the lifecycle suite runs against every backend
func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func sampleResult(state constants.DocState) *entity.ProcessingResult {
	return &entity.ProcessingResult{
		ID:    uuid.New(),
		State: state,
		Classification: entity.ClassificationResult{
			Category:   constants.Invoice,
			Confidence: 0.95,
		},
		ProcessedAt: time.Now().UTC(),
	}
}

func TestJobLifecycle(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			job, err := store.CreateJob(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, constants.JobStatusProcessing, job.Status)
			assert.Equal(t, 2, job.TotalFiles)
			assert.Zero(t, job.Processed)

			res := sampleResult(constants.DocStateAccepted)
			require.NoError(t, store.AppendResult(ctx, job.ID, entity.FileResult{
				FileName: "a.txt", Status: "processed", Result: res,
			}))
			require.NoError(t, store.AppendError(ctx, job.ID, entity.FileError{
				FileName: "b.txt", Error: "boom",
			}))
			require.NoError(t, store.MarkCompleted(ctx, job.ID))

			got, err := store.GetJob(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, constants.JobStatusCompleted, got.Status)
			assert.Equal(t, 2, got.Processed)
			assert.InDelta(t, 100.0, got.Progress, 1e-9)
			require.Len(t, got.Results, 1)
			assert.Equal(t, "a.txt", got.Results[0].FileName)
			require.NotNil(t, got.Results[0].Result)
			assert.Equal(t, res.ID, got.Results[0].Result.ID)
			require.Len(t, got.Errors, 1)
			assert.Equal(t, "boom", got.Errors[0].Error)
		})
	}
}

func TestJobNotFound(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			missing := uuid.New()

			_, err := store.GetJob(ctx, missing)
			assert.ErrorIs(t, err, common.ErrNotFound)

			assert.ErrorIs(t, store.AppendResult(ctx, missing, entity.FileResult{FileName: "x"}), common.ErrNotFound)
			assert.ErrorIs(t, store.AppendError(ctx, missing, entity.FileError{FileName: "x"}), common.ErrNotFound)
			assert.ErrorIs(t, store.MarkCompleted(ctx, missing), common.ErrNotFound)
			assert.ErrorIs(t, store.MarkFailed(ctx, missing), common.ErrNotFound)
		})
	}
}

func TestMarkFailed(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			job, err := store.CreateJob(ctx, 1)
			require.NoError(t, err)

			require.NoError(t, store.MarkFailed(ctx, job.ID))

			got, err := store.GetJob(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, constants.JobStatusFailed, got.Status)
		})
	}
}

func TestRecordsWindow(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

			for i, day := range []int{1, 5, 9} {
				rec := Record{
					ID:        uuid.New(),
					FileName:  "doc.txt",
					Result:    *sampleResult(constants.DocStateAccepted),
					CreatedAt: base.AddDate(0, 0, day),
				}
				require.NoError(t, store.SaveRecord(ctx, rec), "record %d", i)
			}

			all, err := store.ListRecords(ctx, nil, nil)
			require.NoError(t, err)
			assert.Len(t, all, 3)

			from := base.AddDate(0, 0, 2)
			to := base.AddDate(0, 0, 8)
			windowed, err := store.ListRecords(ctx, &from, &to)
			require.NoError(t, err)
			require.Len(t, windowed, 1)
			assert.WithinDuration(t, base.AddDate(0, 0, 5), windowed[0].CreatedAt, time.Second)
		})
	}
}

func TestGetJobReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	job, err := store.CreateJob(ctx, 1)
	require.NoError(t, err)

	first, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	first.Results = append(first.Results, entity.FileResult{FileName: "tampered"})

	second, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Empty(t, second.Results)
}
