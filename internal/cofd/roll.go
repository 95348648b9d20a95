package cofd

import (
	"github.com/cory-johannsen/dicebot/internal/dice"
)

// DieRoll is every value produced by one die of a pool: the first roll
// followed by its explosions and, for rote pools, its single reroll chain.
//
// Invariant: values appear in roll order and the slice is never empty.
type DieRoll []uint32

// PoolRoll is the immutable result of rolling a Pool.
type PoolRoll struct {
	Pool Pool
	Dice []DieRoll
}

// Roll rolls every die of p with roller.
//
// Precondition: p.Count >= 1; roller must be non-nil.
// Postcondition: len(result.Dice) == p.Count.
func Roll(p Pool, roller dice.Roller) PoolRoll {
	dieRolls := make([]DieRoll, 0, p.Count)
	for i := uint32(0); i < p.Count; i++ {
		dieRolls = append(dieRolls, rollDie(p, roller))
	}
	return PoolRoll{Pool: p, Dice: dieRolls}
}

func rollDie(p Pool, roller dice.Roller) DieRoll {
	values := explode(nil, p, roller)
	if p.Quality == Rote && len(values) == 1 && values[0] < p.SuccessThreshold {
		values = explode(values, p, roller)
	}
	return values
}

// MaxChain bounds how many values a single explosion chain may produce, so
// a roller stuck on the maximum face cannot loop forever.
const MaxChain = 100

// explode rolls one die and keeps rolling while the latest value meets the
// quality's explosion threshold, appending every value to dst. At most
// MaxChain values are appended.
func explode(dst []uint32, p Pool, roller dice.Roller) []uint32 {
	threshold := p.Quality.explodeOn()
	for range MaxChain {
		v := roller.RollNumber(p.Sides)
		dst = append(dst, v)
		if threshold == 0 || v < threshold {
			break
		}
	}
	return dst
}

// Values returns every rolled value in roll order, across all dice.
func (r PoolRoll) Values() []uint32 {
	var all []uint32
	for _, d := range r.Dice {
		all = append(all, d...)
	}
	return all
}

// Successes counts the rolled values at or above the success threshold.
func (r PoolRoll) Successes() uint32 {
	var n uint32
	for _, d := range r.Dice {
		for _, v := range d {
			if v >= r.Pool.SuccessThreshold {
				n++
			}
		}
	}
	return n
}

// Exceptional reports whether the successes reach the exceptional threshold.
func (r PoolRoll) Exceptional() bool {
	return r.Successes() >= r.Pool.ExceptionalThreshold
}

// DramaticFailure reports whether a chance die came up 1.
func (r PoolRoll) DramaticFailure() bool {
	return r.Pool.Quality == ChanceDie && len(r.Dice) == 1 && len(r.Dice[0]) == 1 && r.Dice[0][0] == 1
}
