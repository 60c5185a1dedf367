package infrastructure

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAll_ExecutesEveryTask(t *testing.T) {
	var count int64
	tasks := make([]Task, 50)
	for i := range tasks {
		tasks[i] = func(context.Context) error {
			atomic.AddInt64(&count, 1)
			return nil
		}
	}

	require.NoError(t, RunAll(context.Background(), 4, tasks...))
	assert.Equal(t, int64(50), atomic.LoadInt64(&count))
}

func TestRunAll_JoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	err := RunAll(context.Background(), 2,
		func(context.Context) error { return errA },
		func(context.Context) error { return nil },
		func(context.Context) error { return errB },
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestRunAll_RecoversPanics(t *testing.T) {
	err := RunAll(context.Background(), 1, func(context.Context) error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRunAll_NoTasks(t *testing.T) {
	assert.NoError(t, RunAll(context.Background(), 0))
}

func TestWorkerPool_SubmitAfterWait(t *testing.T) {
	wp := NewWorkerPool(context.Background(), 2)
	wp.Start()
	require.NoError(t, wp.Submit(func(context.Context) error { return nil }))
	require.NoError(t, wp.Wait())

	assert.ErrorIs(t, wp.Submit(func(context.Context) error { return nil }), ErrPoolStopped)
}

func TestWorkerPool_CancelledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wp := NewWorkerPool(ctx, 1)
	wp.Start()

	started := make(chan struct{})
	require.NoError(t, wp.Submit(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	<-started
	cancel()

	err := wp.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, wp.Submit(func(context.Context) error { return nil }), ErrPoolStopped)
}

func TestWorkerPool_Stop(t *testing.T) {
	wp := NewWorkerPool(context.Background(), 2)
	wp.Start()
	require.NoError(t, wp.Submit(func(ctx context.Context) error {
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
		return nil
	}))
	wp.Stop()
	assert.ErrorIs(t, wp.Submit(func(context.Context) error { return nil }), ErrPoolStopped)
}

// ========================================
// Benchmarks: Worker Pool with Different Worker Counts
// ========================================

func benchmarkWorkerPool(b *testing.B, workers int) {
	wp := NewWorkerPool(context.Background(), workers)
	wp.Start()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = wp.Submit(func(context.Context) error {
			_ = 1 + 1
			return nil
		})
	}
	_ = wp.Wait()
}

func BenchmarkWorkerPool_1Worker_FastTasks(b *testing.B) {
	benchmarkWorkerPool(b, 1)
}

func BenchmarkWorkerPool_4Workers_FastTasks(b *testing.B) {
	benchmarkWorkerPool(b, 4)
}

func BenchmarkWorkerPool_8Workers_FastTasks(b *testing.B) {
	benchmarkWorkerPool(b, 8)
}
