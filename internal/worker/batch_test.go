package worker

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/classify"
	"github.com/docsift/docsift/internal/extract"
	"github.com/docsift/docsift/internal/ingest"
	"github.com/docsift/docsift/internal/jobstore"
	"github.com/docsift/docsift/internal/pipeline"
)

func newTestRunner(t *testing.T, concurrency int) (*BatchRunner, jobstore.Store) {
	t.Helper()
	classifier := classify.NewClassifier(classify.DefaultRuleSet(), nil)
	registry := extract.NewRegistry(nil)
	processor := pipeline.NewProcessor(nil, pipeline.Config{}, classifier, registry, false)
	store := jobstore.NewMemoryStore()
	return NewBatchRunner(processor, store, concurrency, nil), store
}

func invoiceDocs(n int) []ingest.Document {
	docs := make([]ingest.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, ingest.Document{
			FileName: fmt.Sprintf("invoice-%d.txt", i),
			Text:     fmt.Sprintf("INVOICE\nInvoice Number: INV-%03d\nDate: 2024-03-15\nTotal Amount: $%d.00\n", i, 100+i),
		})
	}
	return docs
}

func TestBatchRunnerProcessesAll(t *testing.T) {
	runner, store := newTestRunner(t, 4)
	ctx := context.Background()

	job, err := store.CreateJob(ctx, 6)
	require.NoError(t, err)
	require.NoError(t, runner.Run(ctx, job, invoiceDocs(6)))

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusCompleted, got.Status)
	assert.Equal(t, 6, got.Processed)
	assert.Len(t, got.Results, 6)
	assert.Empty(t, got.Errors)

	for _, fr := range got.Results {
		require.NotNil(t, fr.Result)
		assert.Equal(t, constants.DocStateAccepted, fr.Result.State)
		assert.Equal(t, constants.Invoice, fr.Result.Classification.Category)
	}

	records, err := store.ListRecords(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, records, 6)
}

func TestBatchRunnerLargeBatch(t *testing.T) {
	runner, store := newTestRunner(t, 2)
	ctx := context.Background()

	job, err := store.CreateJob(ctx, 40)
	require.NoError(t, err)
	require.NoError(t, runner.Run(ctx, job, invoiceDocs(40)))

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusCompleted, got.Status)
	assert.Equal(t, 40, got.Processed)
	assert.Len(t, got.Results, 40)
	assert.Empty(t, got.Errors)
}

func TestBatchRunnerSequentialMode(t *testing.T) {
	runner, store := newTestRunner(t, 1)
	ctx := context.Background()

	job, err := store.CreateJob(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, runner.Run(ctx, job, invoiceDocs(3)))

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusCompleted, got.Status)
	assert.Equal(t, 3, got.Processed)
}

func TestBatchRunnerEmptyBatchCompletes(t *testing.T) {
	runner, store := newTestRunner(t, 2)
	ctx := context.Background()

	job, err := store.CreateJob(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, runner.Run(ctx, job, nil))

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusCompleted, got.Status)
}
