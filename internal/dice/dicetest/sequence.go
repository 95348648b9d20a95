// Package dicetest provides deterministic rollers for tests.
package dicetest

import (
	"fmt"
	"sync"
)

// Sequence is a Roller that returns a fixed list of values in order.
// It panics when exhausted or when a value does not fit the requested sides,
// so a test cannot silently consume more dice than it scripted.
type Sequence struct {
	mu     sync.Mutex
	values []uint32
	next   int
}

// NewSequence returns a Sequence yielding values in order.
func NewSequence(values ...uint32) *Sequence {
	return &Sequence{values: values}
}

// RollNumber returns the next scripted value.
func (s *Sequence) RollNumber(sides uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.values) {
		panic(fmt.Sprintf("dicetest: sequence exhausted after %d rolls", len(s.values)))
	}
	v := s.values[s.next]
	if v < 1 || v > sides {
		panic(fmt.Sprintf("dicetest: scripted value %d out of range for d%d", v, sides))
	}
	s.next++
	return v
}

// Used returns how many values have been consumed.
func (s *Sequence) Used() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Remaining returns how many scripted values are left.
func (s *Sequence) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) - s.next
}

// Fixed is a Roller that always returns the same face, clamped to the sides.
type Fixed uint32

// RollNumber returns the fixed value, or sides if the value exceeds it.
func (f Fixed) RollNumber(sides uint32) uint32 {
	if uint32(f) > sides {
		return sides
	}
	if f == 0 {
		return 1
	}
	return uint32(f)
}

// Percentile returns the scripted die faces for a d10 digit (0-9):
// digit d is rolled as face d+1.
func Percentile(digits ...uint32) []uint32 {
	faces := make([]uint32, len(digits))
	for i, d := range digits {
		faces[i] = d + 1
	}
	return faces
}
