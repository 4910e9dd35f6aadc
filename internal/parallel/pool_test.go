package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewWorkerPool(4)
	var ran atomic.Int64
	done := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		require.NoError(t, pool.Submit(context.Background(), func() {
			ran.Add(1)
			done <- struct{}{}
		}))
	}
	for i := 0; i < 100; i++ {
		<-done
	}
	pool.Shutdown()
	pool.Shutdown()

	assert.Equal(t, int64(100), ran.Load())
}

func TestWorkerPool_DefaultsToNumCPU(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewWorkerPool(0)
	defer pool.Shutdown()
	assert.Greater(t, pool.Workers(), 0)
}

func TestWorkerPool_SubmitAfterShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewWorkerPool(1)
	pool.Shutdown()

	err := pool.Submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrPoolShutdown)
}

func TestWorkerPool_SubmitHonorsContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewWorkerPool(1)
	release := make(chan struct{})
	// One task occupies the worker, two more fill the queue.
	for i := 0; i < 3; i++ {
		require.NoError(t, pool.Submit(context.Background(), func() { <-release }))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func() {})
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)

	close(release)
	pool.Shutdown()
}

func TestWorkerPool_DoneAfterShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewWorkerPool(1)
	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})
	require.NoError(t, pool.Submit(context.Background(), func() {
		close(started)
		<-release
		close(finished)
	}))
	<-started

	select {
	case <-pool.Done():
		t.Fatal("Done closed before Shutdown")
	default:
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	pool.Shutdown()

	select {
	case <-pool.Done():
	default:
		t.Fatal("Done still open after Shutdown returned")
	}
	// Shutdown waits for the running task.
	select {
	case <-finished:
	default:
		t.Fatal("running task did not finish before Shutdown returned")
	}
}

func TestRateLimiter_BurstThenBlock(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(2)
	defer rl.Close()

	require.NoError(t, rl.Wait(context.Background()))
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	// The bucket is empty and the next refill is ~500ms away.
	assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiter_WaitAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(10)
	rl.Close()
	rl.Close()
	assert.ErrorIs(t, rl.Wait(context.Background()), ErrLimiterShutdown)
}
