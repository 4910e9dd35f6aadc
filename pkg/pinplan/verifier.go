package pinplan

import (
	"context"

	"go.uber.org/zap"
)

// Result is the outcome of a verification run.
//
// Splits holds every split that was put to the oracle, in order. On a
// violation the last entry is the split that exposed it.
type Result struct {
	Pins     int     `json:"pins"`
	Isolated bool    `json:"isolated"`
	Splits   []Split `json:"splits"`
}

// FailedSplit returns the split that exposed a violation.
func (r *Result) FailedSplit() (Split, bool) {
	if r == nil || r.Isolated || len(r.Splits) == 0 {
		return Split{}, false
	}
	return r.Splits[len(r.Splits)-1], true
}

// Verifier checks that all pins are pairwise isolated using ⌈log2 n⌉
// bit-plane bipartitions, the fewest that separate every pair.
type Verifier struct {
	logger *zap.Logger
}

// NewVerifier creates a verifier.
func NewVerifier(opts ...Option) *Verifier {
	o := applyOptions(opts)
	return &Verifier{logger: o.logger}
}

// Verify puts each bit-plane split of pins 1..n to the oracle in increasing
// plane order and stops at the first split it rejects.
//
// An isolation violation is reported through Result.Isolated, not as an
// error. Errors are returned for n < 0, for oracle failures, and for context
// cancellation; in the latter two cases the returned Result still lists the
// splits attempted so far.
func (v *Verifier) Verify(ctx context.Context, n int, oracle Oracle) (*Result, error) {
	if err := validatePinCount("Verify", n); err != nil {
		return nil, err
	}
	res := &Result{Pins: n, Isolated: true}
	k := SplitCount(n)
	if k == 0 {
		verifications.WithLabelValues(resultIsolated).Inc()
		return res, nil
	}

	log := v.logger.With(zap.Int("pins", n), zap.Int("splits", k))
	log.Debug("verification started")

	for i := 0; i < k; i++ {
		if err := ctx.Err(); err != nil {
			verifications.WithLabelValues(resultError).Inc()
			return res, newError(Canceled, err, "Verify: stopped before split %d", i)
		}

		split := BitPlaneSplit(n, i)
		res.Splits = append(res.Splits, split)

		ok, err := oracle.Isolated(ctx, split.A, split.B)
		if err != nil {
			oracleCalls.WithLabelValues(resultError).Inc()
			verifications.WithLabelValues(resultError).Inc()
			if ctx.Err() != nil {
				return res, newError(Canceled, err, "Verify: split %d", i)
			}
			log.Warn("oracle failed", zap.Int("split", i), zap.Error(err))
			return res, newError(OracleFailure, err, "Verify: split %d", i)
		}
		if !ok {
			oracleCalls.WithLabelValues(resultViolation).Inc()
			verifications.WithLabelValues(resultViolation).Inc()
			res.Isolated = false
			log.Info("isolation violation",
				zap.Int("split", i),
				zap.Int("side_a", len(split.A)),
				zap.Int("side_b", len(split.B)))
			return res, nil
		}
		oracleCalls.WithLabelValues(resultIsolated).Inc()
	}

	verifications.WithLabelValues(resultIsolated).Inc()
	log.Debug("all splits isolated")
	return res, nil
}

// VerifyAllIsolated runs a default Verifier without cancellation.
func VerifyAllIsolated(n int, oracle Oracle) (*Result, error) {
	return NewVerifier().Verify(context.Background(), n, oracle)
}
