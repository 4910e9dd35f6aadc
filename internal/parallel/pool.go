// Package parallel provides the bounded execution machinery behind
// campaign runs: a fixed worker pool for independent verification and
// planning jobs, and a token-bucket limiter for throttling oracle calls
// against shared test hardware.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"
)

// WorkerPool runs submitted tasks on a fixed set of goroutines.
// Submission blocks once the buffered queue is full, which keeps a large
// campaign from materializing every job at once.
type WorkerPool struct {
	maxWorkers   int
	taskChan     chan func()
	workerWg     sync.WaitGroup
	shutdownChan chan struct{}
	stopped      chan struct{}
	once         sync.Once
}

// NewWorkerPool creates a pool with maxWorkers goroutines.
// If maxWorkers is 0 or negative, it defaults to the number of CPU cores.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	pool := &WorkerPool{
		maxWorkers:   maxWorkers,
		taskChan:     make(chan func(), maxWorkers*2),
		shutdownChan: make(chan struct{}),
		stopped:      make(chan struct{}),
	}

	for i := 0; i < maxWorkers; i++ {
		pool.workerWg.Add(1)
		go pool.worker()
	}

	return pool
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.maxWorkers
}

func (wp *WorkerPool) worker() {
	defer wp.workerWg.Done()

	for {
		select {
		case task := <-wp.taskChan:
			if task != nil {
				task()
			}
		case <-wp.shutdownChan:
			return
		}
	}
}

// Submit queues a task. It blocks while the queue is full and fails if the
// context ends or the pool shuts down first.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	select {
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	default:
	}

	select {
	case wp.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	}
}

// Shutdown stops the workers after their current tasks finish. Tasks still
// queued are dropped. Safe to call more than once.
func (wp *WorkerPool) Shutdown() {
	wp.once.Do(func() {
		close(wp.shutdownChan)
		wp.workerWg.Wait()
		close(wp.stopped)
	})
}

// Done is closed once Shutdown has stopped every worker. After that no
// queued task will run, so callers waiting on one can give up.
func (wp *WorkerPool) Done() <-chan struct{} {
	return wp.stopped
}

// ErrPoolShutdown is returned when submitting to a pool that has shut down.
var ErrPoolShutdown = errors.New("worker pool has been shutdown")

// RateLimiter is a token bucket allowing up to tokensPerSecond operations
// per second, with a burst equal to one second's worth of tokens.
type RateLimiter struct {
	ticker   *time.Ticker
	tokens   chan struct{}
	shutdown chan struct{}
	once     sync.Once
	done     chan struct{}
}

// NewRateLimiter creates a limiter. If tokensPerSecond is 0 or negative it
// defaults to 1000.
func NewRateLimiter(tokensPerSecond int) *RateLimiter {
	if tokensPerSecond <= 0 {
		tokensPerSecond = 1000
	}

	interval := time.Second / time.Duration(tokensPerSecond)
	rl := &RateLimiter{
		ticker:   time.NewTicker(interval),
		tokens:   make(chan struct{}, tokensPerSecond),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for i := 0; i < tokensPerSecond; i++ {
		rl.tokens <- struct{}{}
	}

	go rl.refillTokens()

	return rl
}

func (rl *RateLimiter) refillTokens() {
	defer close(rl.done)
	for {
		select {
		case <-rl.ticker.C:
			select {
			case rl.tokens <- struct{}{}:
			default:
				// bucket full
			}
		case <-rl.shutdown:
			rl.ticker.Stop()
			return
		}
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	select {
	case <-rl.shutdown:
		return ErrLimiterShutdown
	default:
	}

	select {
	case <-rl.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.shutdown:
		return ErrLimiterShutdown
	}
}

// Close stops the refill goroutine and waits for it to exit.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() {
		close(rl.shutdown)
	})
	<-rl.done
}

// ErrLimiterShutdown is returned when waiting on a closed limiter.
var ErrLimiterShutdown = errors.New("rate limiter has been shutdown")
