// Package cofd implements Chronicles of Darkness dice pools: ten-sided dice
// that explode on high results and count successes against a threshold.
package cofd

import "fmt"

// Quality selects a pool's explosion and reroll behaviour.
type Quality int

const (
	TenAgain Quality = iota
	NineAgain
	EightAgain
	Rote
	ChanceDie
	NoExplode
)

// String returns the user-facing name of the quality.
func (q Quality) String() string {
	switch q {
	case TenAgain:
		return "ten-again"
	case NineAgain:
		return "nine-again"
	case EightAgain:
		return "eight-again"
	case Rote:
		return "rote quality"
	case ChanceDie:
		return "chance die"
	case NoExplode:
		return "no roll-agains"
	}
	return fmt.Sprintf("quality(%d)", int(q))
}

// explodeOn returns the face at or above which a die is rolled again, or 0
// when the quality never explodes.
func (q Quality) explodeOn() uint32 {
	switch q {
	case TenAgain, Rote:
		return 10
	case NineAgain:
		return 9
	case EightAgain:
		return 8
	}
	return 0
}

const (
	// Sides is the die size of every pool.
	Sides uint32 = 10
	// DefaultSuccessThreshold is the lowest face counted as a success.
	DefaultSuccessThreshold uint32 = 8
	// DefaultExceptionalThreshold is the success count for an exceptional success.
	DefaultExceptionalThreshold uint32 = 5
	// MaxCount is the largest pool a single command may roll.
	MaxCount uint32 = 100
)

// Pool describes a dice pool.
//
// Invariant: a ChanceDie pool has Count 1, SuccessThreshold 10 and
// ExceptionalThreshold 5.
type Pool struct {
	Count                uint32
	Sides                uint32
	SuccessThreshold     uint32
	ExceptionalThreshold uint32
	Quality              Quality
}

// NewPool builds a pool of count dice with the default thresholds.
//
// Precondition: count >= 1 and exceptional >= 1; q must not be ChanceDie (use ChancePool).
func NewPool(count uint32, q Quality, exceptional uint32) Pool {
	return Pool{
		Count:                count,
		Sides:                Sides,
		SuccessThreshold:     DefaultSuccessThreshold,
		ExceptionalThreshold: exceptional,
		Quality:              q,
	}
}

// ChancePool returns the single-die pool rolled when a character has no dice.
func ChancePool() Pool {
	return Pool{
		Count:                1,
		Sides:                Sides,
		SuccessThreshold:     10,
		ExceptionalThreshold: DefaultExceptionalThreshold,
		Quality:              ChanceDie,
	}
}

// String renders the pool for display, e.g. "3 dice (nine-again, exceptional on 5 successes)".
func (p Pool) String() string {
	if p.Quality == ChanceDie {
		return "chance die"
	}
	noun := "dice"
	if p.Count == 1 {
		noun = "die"
	}
	return fmt.Sprintf("%d %s (%s, exceptional on %d successes)", p.Count, noun, p.Quality, p.ExceptionalThreshold)
}
