package pinplan

import (
	"fmt"
	"math/bits"
	"strings"
)

// Pin identifies a single element under test. Pins are 1-indexed in [1, N].
type Pin int

// PinSet is a compact set of pins backed by a bitset.
// Pins are 1-indexed in the range [1, size]. Each pin is represented by a
// single bit in a uint64 word array, providing O(1) membership testing and
// popcount-based cardinality.
//
// Memory usage: (size + 63) / 64 * 8 bytes
//
// The exported operations treat a PinSet as immutable and return new
// instances. The unexported add/remove mutators exist for PairSet, which owns
// its adjacency rows and updates them in place.
type PinSet struct {
	size  int      // largest representable pin (inclusive)
	words []uint64 // bit i represents pin i+1
}

// NewPinSet creates an empty set able to hold pins 1..size.
func NewPinSet(size int) *PinSet {
	if size <= 0 {
		return &PinSet{}
	}
	return &PinSet{size: size, words: make([]uint64, (size+63)/64)}
}

// NewFullPinSet creates a set containing every pin from 1 to size.
func NewFullPinSet(size int) *PinSet {
	s := NewPinSet(size)
	for i := range s.words {
		s.words[i] = ^uint64(0)
	}
	s.maskTail()
	return s
}

// NewPinSetOf creates a set containing the given pins.
// Pins outside [1, size] are ignored.
func NewPinSetOf(size int, pins []Pin) *PinSet {
	s := NewPinSet(size)
	for _, p := range pins {
		s.add(p)
	}
	return s
}

// Size returns the largest pin the set can hold.
func (s *PinSet) Size() int {
	return s.size
}

// Count returns the number of pins in the set.
func (s *PinSet) Count() int {
	count := 0
	for _, word := range s.words {
		count += bits.OnesCount64(word)
	}
	return count
}

// Has reports whether p is in the set. O(1).
func (s *PinSet) Has(p Pin) bool {
	if p < 1 || int(p) > s.size {
		return false
	}
	i := int(p) - 1
	return (s.words[i/64]>>uint(i%64))&1 == 1
}

// With returns a copy of the set with p added.
func (s *PinSet) With(p Pin) *PinSet {
	out := s.Clone()
	out.add(p)
	return out
}

// Without returns a copy of the set with p removed.
func (s *PinSet) Without(p Pin) *PinSet {
	out := s.Clone()
	out.remove(p)
	return out
}

// Intersect returns the pins present in both sets.
// Sets of different sizes intersect over the smaller range.
func (s *PinSet) Intersect(other *PinSet) *PinSet {
	out := NewPinSet(s.size)
	for i := 0; i < len(out.words) && i < len(other.words); i++ {
		out.words[i] = s.words[i] & other.words[i]
	}
	return out
}

// Complement returns the pins in [1, size] that are not in the set.
func (s *PinSet) Complement() *PinSet {
	out := NewPinSet(s.size)
	for i := range s.words {
		out.words[i] = ^s.words[i]
	}
	out.maskTail()
	return out
}

// IntersectCount returns |s ∩ other| without allocating.
func (s *PinSet) IntersectCount(other *PinSet) int {
	count := 0
	for i := 0; i < len(s.words) && i < len(other.words); i++ {
		count += bits.OnesCount64(s.words[i] & other.words[i])
	}
	return count
}

// Clone returns an independent copy of the set.
func (s *PinSet) Clone() *PinSet {
	words := make([]uint64, len(s.words))
	copy(words, s.words)
	return &PinSet{size: s.size, words: words}
}

// Equal reports whether both sets hold the same pins over the same range.
func (s *PinSet) Equal(other *PinSet) bool {
	if other == nil || s.size != other.size {
		return false
	}
	for i := range s.words {
		if s.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// IteratePins calls f for each pin in ascending order.
func (s *PinSet) IteratePins(f func(p Pin)) {
	for wordIdx, word := range s.words {
		for word != 0 {
			offset := bits.TrailingZeros64(word)
			f(Pin(wordIdx*64 + offset + 1))
			word &= word - 1
		}
	}
}

// Pins returns the members as an ascending slice.
func (s *PinSet) Pins() []Pin {
	out := make([]Pin, 0, s.Count())
	s.IteratePins(func(p Pin) {
		out = append(out, p)
	})
	return out
}

// String renders the set as "{1,3,5}" or "{1..100}" for consecutive runs.
func (s *PinSet) String() string {
	pins := s.Pins()
	switch {
	case len(pins) == 0:
		return "{}"
	case len(pins) == 1:
		return fmt.Sprintf("{%d}", pins[0])
	case int(pins[len(pins)-1]-pins[0]) == len(pins)-1:
		return fmt.Sprintf("{%d..%d}", pins[0], pins[len(pins)-1])
	}

	var b strings.Builder
	b.WriteString("{")
	for i, p := range pins {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%d", p)
		if i >= 19 && len(pins) > 20 {
			fmt.Fprintf(&b, ",...+%d more", len(pins)-20)
			break
		}
	}
	b.WriteString("}")
	return b.String()
}

func (s *PinSet) add(p Pin) {
	if p < 1 || int(p) > s.size {
		return
	}
	i := int(p) - 1
	s.words[i/64] |= 1 << uint(i%64)
}

func (s *PinSet) remove(p Pin) {
	if p < 1 || int(p) > s.size {
		return
	}
	i := int(p) - 1
	s.words[i/64] &^= 1 << uint(i%64)
}

// maskTail clears bits beyond size in the last word.
func (s *PinSet) maskTail() {
	if len(s.words) == 0 {
		return
	}
	if rem := s.size % 64; rem != 0 {
		s.words[len(s.words)-1] &= (uint64(1) << uint(rem)) - 1
	}
}
