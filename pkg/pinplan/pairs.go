package pinplan

import "fmt"

// Pair is an unordered pair of distinct pins, stored with P < Q.
type Pair struct {
	P, Q Pin
}

// NewPair returns the normalized pair {a, b}.
func NewPair(a, b Pin) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{P: a, Q: b}
}

func (p Pair) String() string {
	return fmt.Sprintf("(%d,%d)", p.P, p.Q)
}

// CoveredBy reports whether exactly one member of the pair is in s.
func (p Pair) CoveredBy(s *PinSet) bool {
	return s.Has(p.P) != s.Has(p.Q)
}

// PairCount returns n·(n−1)/2, the size of the pair universe for n pins.
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// AllPairs enumerates every pair over pins 1..n in lexicographic order:
// (1,2), (1,3), ..., (n-1,n).
func AllPairs(n int) []Pair {
	out := make([]Pair, 0, PairCount(n))
	for p := 1; p <= n; p++ {
		for q := p + 1; q <= n; q++ {
			out = append(out, Pair{P: Pin(p), Q: Pin(q)})
		}
	}
	return out
}

// PairSet is a mutable set of pairs over pins 1..n.
//
// It is stored as a symmetric adjacency matrix of PinSet rows: q is in row p
// iff the pair {p, q} is present. Coverage queries against a pin set then
// reduce to popcounts over the rows of its members.
type PairSet struct {
	n    int
	rows []*PinSet
	size int
}

// NewPairSet returns the full universe of pairs over pins 1..n.
func NewPairSet(n int) *PairSet {
	ps := &PairSet{n: n}
	if n <= 0 {
		return ps
	}
	ps.rows = make([]*PinSet, n)
	for p := 1; p <= n; p++ {
		ps.rows[p-1] = NewFullPinSet(n).Without(Pin(p))
	}
	ps.size = PairCount(n)
	return ps
}

// Pins returns the pin range of the set.
func (ps *PairSet) Pins() int {
	return ps.n
}

// Len returns the number of pairs present.
func (ps *PairSet) Len() int {
	return ps.size
}

// Empty reports whether no pairs remain.
func (ps *PairSet) Empty() bool {
	return ps.size == 0
}

// Has reports whether the pair is present.
func (ps *PairSet) Has(pr Pair) bool {
	if !ps.inRange(pr) {
		return false
	}
	return ps.rows[pr.P-1].Has(pr.Q)
}

// Remove deletes the pair and reports whether it was present.
func (ps *PairSet) Remove(pr Pair) bool {
	if !ps.Has(pr) {
		return false
	}
	ps.rows[pr.P-1].remove(pr.Q)
	ps.rows[pr.Q-1].remove(pr.P)
	ps.size--
	return true
}

// Pairs returns the present pairs in lexicographic order.
func (ps *PairSet) Pairs() []Pair {
	out := make([]Pair, 0, ps.size)
	for p := 1; p <= ps.n; p++ {
		ps.rows[p-1].IteratePins(func(q Pin) {
			if q > Pin(p) {
				out = append(out, Pair{P: Pin(p), Q: q})
			}
		})
	}
	return out
}

// Degree returns how many present pairs contain p.
func (ps *PairSet) Degree(p Pin) int {
	if p < 1 || int(p) > ps.n {
		return 0
	}
	return ps.rows[p-1].Count()
}

// CoverageCount returns how many present pairs are covered by s, i.e. have
// exactly one member inside s.
func (ps *PairSet) CoverageCount(s *PinSet) int {
	count := 0
	s.IteratePins(func(p Pin) {
		if int(p) > ps.n {
			return
		}
		row := ps.rows[p-1]
		count += row.Count() - row.IntersectCount(s)
	})
	return count
}

// CoverageWith returns CoverageCount(s ∪ {p}) for p not in s, computed from
// CoverageCount(s) by the change p introduces: its pairs leaving s become
// covered, its pairs into s stop being covered.
func (ps *PairSet) CoverageWith(s *PinSet, current int, p Pin) int {
	if s.Has(p) || p < 1 || int(p) > ps.n {
		return current
	}
	row := ps.rows[p-1]
	inside := row.IntersectCount(s)
	return current + (row.Count() - inside) - inside
}

// CoverageSet returns the present pairs covered by s in lexicographic order.
func (ps *PairSet) CoverageSet(s *PinSet) []Pair {
	var out []Pair
	for p := 1; p <= ps.n; p++ {
		inP := s.Has(Pin(p))
		ps.rows[p-1].IteratePins(func(q Pin) {
			if q > Pin(p) && inP != s.Has(q) {
				out = append(out, Pair{P: Pin(p), Q: q})
			}
		})
	}
	return out
}

// RemoveCoveredBy deletes every present pair covered by s and returns how
// many were removed.
func (ps *PairSet) RemoveCoveredBy(s *PinSet) int {
	removed := 0
	outside := s.Complement()
	s.IteratePins(func(p Pin) {
		if int(p) > ps.n {
			return
		}
		ps.rows[p-1].Intersect(outside).IteratePins(func(q Pin) {
			if ps.Remove(NewPair(p, q)) {
				removed++
			}
		})
	})
	return removed
}

func (ps *PairSet) inRange(pr Pair) bool {
	return pr.P >= 1 && pr.Q <= Pin(ps.n) && pr.P < pr.Q
}
