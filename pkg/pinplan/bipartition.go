package pinplan

import (
	"fmt"
	"math/bits"
)

// Split is a two-way partition of pins 1..n. A holds the pins whose
// zero-based index has bit Index cleared, B the pins where it is set.
// Both sides are ascending and together cover the whole range.
type Split struct {
	Index int   `json:"index"`
	A     []Pin `json:"a"`
	B     []Pin `json:"b"`
}

// Separates reports whether p and q fall on opposite sides of the split.
func (s Split) Separates(p, q Pin) bool {
	if p == q || p < 1 || q < 1 {
		return false
	}
	return bitOf(p, s.Index) != bitOf(q, s.Index)
}

func (s Split) String() string {
	return fmt.Sprintf("split %d: A=%v B=%v", s.Index, s.A, s.B)
}

// SplitCount returns ⌈log2 n⌉, the number of bit-plane splits needed to give
// each of n pins a distinct binary signature. It is 0 for n ≤ 1.
func SplitCount(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// BitPlaneSplit partitions pins 1..n by bit i of each pin's zero-based index.
// The result depends only on (n, i).
func BitPlaneSplit(n, i int) Split {
	s := Split{Index: i}
	if n <= 0 {
		return s
	}
	s.A = make([]Pin, 0, n/2+1)
	s.B = make([]Pin, 0, n/2+1)
	for p := Pin(1); p <= Pin(n); p++ {
		if bitOf(p, i) == 0 {
			s.A = append(s.A, p)
		} else {
			s.B = append(s.B, p)
		}
	}
	return s
}

// BitPlaneSplits returns the full plan of SplitCount(n) splits without
// consulting an oracle.
func BitPlaneSplits(n int) []Split {
	k := SplitCount(n)
	out := make([]Split, k)
	for i := 0; i < k; i++ {
		out[i] = BitPlaneSplit(n, i)
	}
	return out
}

// SeparatingPlane returns the lowest bit-plane whose split puts p and q on
// opposite sides. ok is false when p == q or either pin is below 1.
func SeparatingPlane(p, q Pin) (plane int, ok bool) {
	if p == q || p < 1 || q < 1 {
		return 0, false
	}
	diff := uint(p-1) ^ uint(q-1)
	return bits.TrailingZeros(diff), true
}

func bitOf(p Pin, i int) int {
	return (int(p-1) >> uint(i)) & 1
}
