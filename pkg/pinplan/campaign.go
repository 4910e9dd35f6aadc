package pinplan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gitrdm/pinplan/internal/parallel"
)

// Strategy selects which planning component a Job runs.
type Strategy string

const (
	// StrategyVerify runs the bipartition verifier against the oracle.
	StrategyVerify Strategy = "verify"
	// StrategyPlan runs the pair-coverage planner.
	StrategyPlan Strategy = "plan"
)

// Job is one independent run within a campaign.
type Job struct {
	Name     string
	Strategy Strategy
	Pins     int
}

func (j Job) validate(i int) error {
	switch {
	case j.Strategy != StrategyVerify && j.Strategy != StrategyPlan:
		return newError(InvalidJob, nil, "jobs[%d] %q: unknown strategy %q", i, j.Name, j.Strategy)
	case j.Pins < 0:
		return newError(InvalidJob, ErrInvalidPinCount, "jobs[%d] %q: pins must be ≥0, got %d", i, j.Name, j.Pins)
	}
	return nil
}

// JobResult carries the outcome of one job. Exactly one of Verify and
// Batches is populated, according to the job's strategy.
type JobResult struct {
	Job     Job
	RunID   string
	Verify  *Result
	Batches []Batch
	Err     error
	Elapsed time.Duration
}

// CampaignConfig holds configuration for a campaign.
type CampaignConfig struct {
	// Workers is the number of jobs run concurrently.
	// If 0, defaults to runtime.NumCPU().
	Workers int

	// OracleRate caps oracle calls per second across all verify jobs.
	// If 0, oracle calls are not throttled.
	OracleRate int
}

// Campaign runs independent verification and planning jobs in parallel.
// Each job is itself sequential; parallelism is only ever across jobs.
type Campaign struct {
	pool     *parallel.WorkerPool
	limiter  *parallel.RateLimiter
	verifier *Verifier
	planner  *Planner
	logger   *zap.Logger

	closing context.Context
	close   context.CancelFunc
}

// NewCampaign creates a campaign and starts its workers. Call Close when done.
func NewCampaign(cfg CampaignConfig, opts ...Option) *Campaign {
	o := applyOptions(opts)
	c := &Campaign{
		pool:     parallel.NewWorkerPool(cfg.Workers),
		verifier: NewVerifier(opts...),
		planner:  NewPlanner(opts...),
		logger:   o.logger,
	}
	c.closing, c.close = context.WithCancel(context.Background())
	if cfg.OracleRate > 0 {
		c.limiter = parallel.NewRateLimiter(cfg.OracleRate)
	}
	return c
}

// Run executes every job and returns their results in job order.
//
// Isolation violations are ordinary results. The first job that fails with
// an error cancels the jobs still pending or running, and that error is
// returned alongside the partial results. Closing the campaign cancels a
// run in progress; jobs that never started fail with ErrCanceled.
func (c *Campaign) Run(ctx context.Context, jobs []Job, oracle Oracle) ([]JobResult, error) {
	for i, j := range jobs {
		if err := j.validate(i); err != nil {
			return nil, err
		}
	}
	if c.limiter != nil {
		oracle = &throttledOracle{oracle: oracle, limiter: c.limiter}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer context.AfterFunc(c.closing, cancel)()

	results := make([]JobResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range jobs {
		res := &results[i]
		res.Job = jobs[i]
		res.RunID = uuid.NewString()
		g.Go(func() error {
			done := make(chan error, 1)
			err := c.pool.Submit(gctx, func() {
				done <- c.runJob(gctx, res, oracle)
			})
			if err != nil {
				res.Err = newError(Canceled, err, "job %q not started", res.Job.Name)
				return res.Err
			}
			select {
			case err := <-done:
				return err
			case <-c.pool.Done():
			}
			// Workers have exited, so a task that ran has already reported.
			select {
			case err := <-done:
				return err
			default:
				res.Err = newError(Canceled, parallel.ErrPoolShutdown, "job %q dropped at close", res.Job.Name)
				return res.Err
			}
		})
	}
	err := g.Wait()
	return results, err
}

func (c *Campaign) runJob(ctx context.Context, res *JobResult, oracle Oracle) error {
	log := c.logger.With(
		zap.String("run_id", res.RunID),
		zap.String("job", res.Job.Name),
		zap.String("strategy", string(res.Job.Strategy)))
	start := time.Now()

	switch res.Job.Strategy {
	case StrategyVerify:
		res.Verify, res.Err = c.verifier.Verify(ctx, res.Job.Pins, oracle)
	case StrategyPlan:
		res.Batches, res.Err = c.planner.Plan(ctx, res.Job.Pins)
	}
	res.Elapsed = time.Since(start)

	if res.Err != nil {
		log.Warn("job failed", zap.Error(res.Err))
		return res.Err
	}
	log.Debug("job finished", zap.Duration("elapsed", res.Elapsed))
	return nil
}

// Close cancels any run in progress, then stops the workers and the oracle
// limiter.
func (c *Campaign) Close() {
	c.close()
	c.pool.Shutdown()
	if c.limiter != nil {
		c.limiter.Close()
	}
}

// throttledOracle waits for a limiter token before each oracle call.
type throttledOracle struct {
	oracle  Oracle
	limiter *parallel.RateLimiter
}

func (t *throttledOracle) Isolated(ctx context.Context, a, b []Pin) (bool, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return false, err
	}
	return t.oracle.Isolated(ctx, a, b)
}
