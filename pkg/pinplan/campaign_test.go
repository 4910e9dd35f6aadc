package pinplan

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCampaign_RunsJobsInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	board, err := NewBoard(NewPair(3, 7))
	require.NoError(t, err)

	c := NewCampaign(CampaignConfig{Workers: 3})
	defer c.Close()

	jobs := []Job{
		{Name: "plan-10", Strategy: StrategyPlan, Pins: 10},
		{Name: "verify-6", Strategy: StrategyVerify, Pins: 6},
		{Name: "verify-8", Strategy: StrategyVerify, Pins: 8},
		{Name: "plan-1", Strategy: StrategyPlan, Pins: 1},
		{Name: "verify-1000", Strategy: StrategyVerify, Pins: 1000},
	}
	results, err := c.Run(context.Background(), jobs, board)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, r := range results {
		assert.Equal(t, jobs[i], r.Job)
		assert.NoError(t, r.Err)
		_, perr := uuid.Parse(r.RunID)
		assert.NoError(t, perr, "run id %q", r.RunID)
	}

	assert.Len(t, results[0].Batches, 4)
	assert.NoError(t, VerifyCoverage(10, results[0].Batches))

	// Pins 3 and 7 are both present only from 7 pins up.
	assert.True(t, results[1].Verify.Isolated)
	assert.False(t, results[2].Verify.Isolated)
	assert.Len(t, results[2].Verify.Splits, 3)
	assert.False(t, results[4].Verify.Isolated)

	assert.Empty(t, results[3].Batches)
	assert.NotEqual(t, results[0].RunID, results[1].RunID)
}

func TestCampaign_RejectsInvalidJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewCampaign(CampaignConfig{Workers: 1})
	defer c.Close()

	_, err := c.Run(context.Background(), []Job{{Name: "x", Strategy: "guess", Pins: 4}}, AlwaysIsolated)
	assert.ErrorIs(t, err, ErrInvalidJob)

	_, err = c.Run(context.Background(), []Job{{Name: "y", Strategy: StrategyPlan, Pins: -1}}, AlwaysIsolated)
	assert.ErrorIs(t, err, ErrInvalidJob)
	assert.ErrorIs(t, err, ErrInvalidPinCount)
}

func TestCampaign_OracleErrorCancelsRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("probe lost contact")
	var calls atomic.Int64
	oracle := oracleFunc(func(ctx context.Context, a, b []Pin) (bool, error) {
		calls.Add(1)
		return false, boom
	})

	c := NewCampaign(CampaignConfig{Workers: 2})
	defer c.Close()

	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = Job{Name: "verify", Strategy: StrategyVerify, Pins: 64}
	}
	results, err := c.Run(context.Background(), jobs, oracle)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, results, len(jobs))
	assert.Less(t, calls.Load(), int64(len(jobs)*SplitCount(64)))
}

func TestCampaign_ThrottledOracle(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewCampaign(CampaignConfig{Workers: 2, OracleRate: 1000})
	defer c.Close()

	jobs := []Job{
		{Name: "a", Strategy: StrategyVerify, Pins: 16},
		{Name: "b", Strategy: StrategyVerify, Pins: 16},
	}
	results, err := c.Run(context.Background(), jobs, AlwaysIsolated)
	require.NoError(t, err)
	for _, r := range results {
		assert.True(t, r.Verify.Isolated)
		assert.Len(t, r.Verify.Splits, 4)
	}
}

func TestCampaign_CanceledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewCampaign(CampaignConfig{Workers: 1})
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Run(ctx, []Job{{Name: "p", Strategy: StrategyPlan, Pins: 30}}, AlwaysIsolated)
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestCampaign_CloseDuringRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	slow := oracleFunc(func(ctx context.Context, a, b []Pin) (bool, error) {
		select {
		case <-time.After(20 * time.Millisecond):
			return true, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	})

	c := NewCampaign(CampaignConfig{Workers: 1})
	jobs := make([]Job, 4)
	for i := range jobs {
		jobs[i] = Job{Name: "verify", Strategy: StrategyVerify, Pins: 4}
	}

	type outcome struct {
		results []JobResult
		err     error
	}
	finished := make(chan outcome, 1)
	go func() {
		results, err := c.Run(context.Background(), jobs, slow)
		finished <- outcome{results, err}
	}()

	time.Sleep(10 * time.Millisecond)
	c.Close()

	select {
	case out := <-finished:
		assert.ErrorIs(t, out.err, ErrCanceled)
		assert.Len(t, out.results, len(jobs))
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestCampaign_RunAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewCampaign(CampaignConfig{Workers: 2})
	c.Close()

	_, err := c.Run(context.Background(), []Job{{Name: "p", Strategy: StrategyPlan, Pins: 8}}, AlwaysIsolated)
	assert.ErrorIs(t, err, ErrCanceled)
}

type oracleFunc func(ctx context.Context, a, b []Pin) (bool, error)

func (f oracleFunc) Isolated(ctx context.Context, a, b []Pin) (bool, error) {
	return f(ctx, a, b)
}
