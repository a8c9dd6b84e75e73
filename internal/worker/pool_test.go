package worker

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingJob struct {
	counter *atomic.Int64
	fail    bool
}

type countingResult struct {
	err error
}

func (r *countingResult) GetError() error { return r.err }

func (j *countingJob) Execute(ctx context.Context) Result {
	j.counter.Add(1)
	if j.fail {
		return &countingResult{err: context.Canceled}
	}
	return &countingResult{}
}

func TestPoolRunsAllJobs(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(4)
	pool.Start()

	for i := 0; i < 20; i++ {
		pool.Submit(&countingJob{counter: &counter})
	}
	results := pool.Wait()

	assert.Equal(t, int64(20), counter.Load())
	assert.Len(t, results, 20)
}

func TestPoolSingleWorkerSequential(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(1)
	pool.Start()

	for i := 0; i < 5; i++ {
		pool.Submit(&countingJob{counter: &counter})
	}
	results := pool.Wait()

	assert.Equal(t, int64(5), counter.Load())
	assert.Len(t, results, 5)
}

func TestPoolQueueDeeperThanBuffers(t *testing.T) {
	// Submissions far past the channel capacities must not block: results
	// are drained as they arrive, not only once Wait starts reading.
	var counter atomic.Int64
	pool := NewPool(1)
	pool.Start()

	for i := 0; i < 64; i++ {
		pool.Submit(&countingJob{counter: &counter})
	}
	results := pool.Wait()

	assert.Equal(t, int64(64), counter.Load())
	assert.Len(t, results, 64)
}

func TestPoolZeroWorkersClamped(t *testing.T) {
	pool := NewPool(0)
	pool.Start()
	pool.Submit(&countingJob{counter: &atomic.Int64{}})
	assert.Len(t, pool.Wait(), 1)
}

func TestPoolCollectsErrors(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(2)
	pool.Start()

	pool.Submit(&countingJob{counter: &counter})
	pool.Submit(&countingJob{counter: &counter, fail: true})
	results := pool.Wait()

	var failed int
	for _, r := range results {
		if r.GetError() != nil {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}
