package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueueProcessesJobs(t *testing.T) {
	var processed int32
	done := make(chan struct{}, 3)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&processed, 1)
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(Job{Kind: "roster_export"}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&processed))
}

func TestQueueRetriesThenReports(t *testing.T) {
	var attempts int32
	var mu sync.Mutex
	var finalErr error
	var finalJob Job
	reported := make(chan struct{})

	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("boom")
	}, QueueConfig{
		MaxRetries: 2,
		RetryDelay: 5 * time.Millisecond,
		OnResult: func(job Job, err error) {
			mu.Lock()
			finalJob, finalErr = job, err
			mu.Unlock()
			close(reported)
		},
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Kind: "roster_export"}))
	select {
	case <-reported:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for final result")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.EqualError(t, finalErr, "boom")
	assert.Equal(t, "job-1", finalJob.ID)
	assert.Equal(t, 3, finalJob.Attempt)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{}))
	q.Stop()
}

func TestQueueStopCancelsPendingRetry(t *testing.T) {
	q := NewQueue("stop", func(ctx context.Context, job Job) error {
		return errors.New("fail")
	}, QueueConfig{RetryDelay: time.Hour})
	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{}))
	time.Sleep(20 * time.Millisecond)
	q.Stop()
	assert.Error(t, q.Enqueue(Job{}))
}
