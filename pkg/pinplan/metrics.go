package pinplan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// oracleCalls counts oracle invocations by answer.
	// Labels: "isolated", "violation", "error"
	oracleCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinplan_oracle_calls_total",
		Help: "Oracle invocations by answer",
	}, []string{"result"})

	// verifications counts completed verification runs by outcome.
	// Labels: "isolated", "violation", "error"
	verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinplan_verifications_total",
		Help: "Verification runs by outcome",
	}, []string{"result"})

	batchesPlanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pinplan_batches_planned_total",
		Help: "Batches produced by the pair-coverage planner",
	})

	pairsCovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pinplan_pairs_covered_total",
		Help: "Pairs credited to planned batches",
	})

	planDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pinplan_plan_duration_seconds",
		Help:    "Wall time of a complete planning run",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
	})
)

const (
	resultIsolated  = "isolated"
	resultViolation = "violation"
	resultError     = "error"
)
