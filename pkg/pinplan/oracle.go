package pinplan

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Oracle reports whether every cross pair between two disjoint pin sets is
// isolated. Implementations may talk to hardware, run a simulation, or
// simply return true; the verifier treats the answer as authoritative and
// assumes repeated calls with the same arguments agree.
type Oracle interface {
	Isolated(ctx context.Context, a, b []Pin) (bool, error)
}

// OracleFunc adapts a plain predicate to the Oracle interface.
type OracleFunc func(a, b []Pin) bool

// Isolated calls f(a, b).
func (f OracleFunc) Isolated(_ context.Context, a, b []Pin) (bool, error) {
	return f(a, b), nil
}

// AlwaysIsolated is a stub oracle that reports every bipartition as isolated.
var AlwaysIsolated Oracle = OracleFunc(func(a, b []Pin) bool { return true })

// Board simulates a device under test with a fixed set of shorted pin pairs.
// A bipartition is isolated iff no shorted pair straddles it.
// Board is safe for concurrent use.
type Board struct {
	mu     sync.RWMutex
	shorts map[Pair]struct{}
	calls  atomic.Int64
}

// NewBoard creates a simulated board. Each short must name two distinct
// positive pins.
func NewBoard(shorts ...Pair) (*Board, error) {
	b := &Board{shorts: make(map[Pair]struct{}, len(shorts))}
	for i, s := range shorts {
		if s.P < 1 || s.Q < 1 || s.P == s.Q {
			return nil, fmt.Errorf("NewBoard: shorts[%d] %v must join two distinct positive pins", i, s)
		}
		b.shorts[NewPair(s.P, s.Q)] = struct{}{}
	}
	return b, nil
}

// Short adds a shorted pair to the board.
func (b *Board) Short(p, q Pin) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shorts[NewPair(p, q)] = struct{}{}
}

// Isolated implements Oracle.
func (b *Board) Isolated(ctx context.Context, a, side []Pin) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	b.calls.Add(1)

	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.shorts) == 0 {
		return true, nil
	}
	inA := membership(a)
	inB := membership(side)
	for s := range b.shorts {
		_, pa := inA[s.P]
		_, qb := inB[s.Q]
		_, qa := inA[s.Q]
		_, pb := inB[s.P]
		if (pa && qb) || (qa && pb) {
			return false, nil
		}
	}
	return true, nil
}

// Calls returns how many times Isolated has been invoked.
func (b *Board) Calls() int {
	return int(b.calls.Load())
}

// Shorts returns the board's shorted pairs.
func (b *Board) Shorts() []Pair {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Pair, 0, len(b.shorts))
	for s := range b.shorts {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].P != out[j].P {
			return out[i].P < out[j].P
		}
		return out[i].Q < out[j].Q
	})
	return out
}

func membership(pins []Pin) map[Pin]struct{} {
	m := make(map[Pin]struct{}, len(pins))
	for _, p := range pins {
		m[p] = struct{}{}
	}
	return m
}
