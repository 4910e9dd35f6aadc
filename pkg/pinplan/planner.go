package pinplan

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Batch is one test group produced by the planner.
type Batch struct {
	// Index is the batch's position in the plan.
	Index int `json:"index"`
	// Pins are the members in the order they were admitted (ascending).
	Pins []Pin `json:"pins"`
	// Covered is the number of pairs credited to this batch: pairs it
	// splits that no earlier batch had already split.
	Covered int `json:"covered"`
}

// BatchCap returns the largest batch the planner can build for pinCount
// pins. The scan stops once a batch holds more than pinCount/2 members, so
// a batch can reach pinCount/2 + 1.
func BatchCap(pinCount int) int {
	return pinCount/2 + 1
}

// Planner builds a pair-covering set of batches greedily, one batch at a
// time, against the pairs that earlier batches left uncovered.
type Planner struct {
	logger *zap.Logger
}

// NewPlanner creates a planner.
func NewPlanner(opts ...Option) *Planner {
	o := applyOptions(opts)
	return &Planner{logger: o.logger}
}

// Plan returns batches that together split every pair of pins 1..pinCount.
// Each pair is credited to the first batch that splits it.
func (pl *Planner) Plan(ctx context.Context, pinCount int) ([]Batch, error) {
	if err := validatePinCount("Plan", pinCount); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { planDuration.Observe(time.Since(start).Seconds()) }()

	remaining := NewPairSet(pinCount)
	log := pl.logger.With(zap.Int("pins", pinCount), zap.Int("pairs", remaining.Len()))
	log.Debug("planning started")

	var batches []Batch
	for !remaining.Empty() {
		if err := ctx.Err(); err != nil {
			return batches, newError(Canceled, err, "Plan: stopped after %d batches", len(batches))
		}
		b, err := buildBatch(remaining, pinCount, len(batches))
		if err != nil {
			log.Error("planning stalled", zap.Int("batch", len(batches)), zap.Int("remaining", remaining.Len()))
			return batches, err
		}
		batches = append(batches, b)
		batchesPlanned.Inc()
		pairsCovered.Add(float64(b.Covered))
		log.Debug("batch planned",
			zap.Int("batch", b.Index),
			zap.Int("size", len(b.Pins)),
			zap.Int("covered", b.Covered),
			zap.Int("remaining", remaining.Len()))
	}

	log.Info("planning finished", zap.Int("batches", len(batches)), zap.Duration("elapsed", time.Since(start)))
	return batches, nil
}

// PlanBatches runs a default Planner without cancellation.
func PlanBatches(pinCount int) ([]Batch, error) {
	return NewPlanner().Plan(context.Background(), pinCount)
}

// buildBatch scans candidates 1..pinCount and admits a pin when the batch
// with it would cover more remaining pairs than the previous measurement.
// The baseline moves to every measurement, rejected ones included, so each
// candidate is compared with the candidate before it. The pairs covered by
// the finished batch are then removed from remaining.
func buildBatch(remaining *PairSet, pinCount, index int) (Batch, error) {
	members := NewPinSet(pinCount)
	pins := make([]Pin, 0, BatchCap(pinCount))
	previous, current := 0, 0

	for p := Pin(1); p <= Pin(pinCount); p++ {
		if len(pins) > pinCount/2 {
			break
		}
		tentative := remaining.CoverageWith(members, current, p)
		if tentative > previous {
			members.add(p)
			pins = append(pins, p)
			current = tentative
		}
		previous = tentative
	}

	covered := remaining.RemoveCoveredBy(members)
	if covered == 0 {
		return Batch{}, newError(PlanningStalled, nil,
			"Plan: batch %d covered no new pairs with %d still remaining", index, remaining.Len())
	}
	return Batch{Index: index, Pins: pins, Covered: covered}, nil
}

// CoverageSet returns the pairs in remaining that pins would split.
func CoverageSet(pins []Pin, remaining *PairSet) []Pair {
	return remaining.CoverageSet(NewPinSetOf(remaining.Pins(), pins))
}

// VerifyCoverage replays a plan against the pair universe for pinCount pins
// and checks that every pair is split, that each batch is credited with
// exactly the pairs it newly covers, and that no batch exceeds BatchCap.
func VerifyCoverage(pinCount int, batches []Batch) error {
	if err := validatePinCount("VerifyCoverage", pinCount); err != nil {
		return err
	}
	remaining := NewPairSet(pinCount)
	limit := BatchCap(pinCount)
	for _, b := range batches {
		if len(b.Pins) > limit {
			return fmt.Errorf("VerifyCoverage: batch %d has %d pins, cap is %d", b.Index, len(b.Pins), limit)
		}
		got := remaining.RemoveCoveredBy(NewPinSetOf(pinCount, b.Pins))
		if got != b.Covered {
			return fmt.Errorf("VerifyCoverage: batch %d newly covers %d pairs, credited %d", b.Index, got, b.Covered)
		}
	}
	if !remaining.Empty() {
		return fmt.Errorf("VerifyCoverage: %d pairs uncovered, first %v", remaining.Len(), remaining.Pairs()[0])
	}
	return nil
}
