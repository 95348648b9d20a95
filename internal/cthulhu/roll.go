package cthulhu

import (
	"math"

	"github.com/cory-johannsen/dicebot/internal/dice"
)

// Outcome classifies a percentile roll against a target.
type Outcome int

const (
	Failure Outcome = iota
	Success
	HardSuccess
	ExtremeSuccess
	CriticalSuccess
	Fumble
)

// String returns the outcome as shown in results.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success!"
	case HardSuccess:
		return "hard success!"
	case ExtremeSuccess:
		return "extreme success!"
	case CriticalSuccess:
		return "critical success!"
	case Fumble:
		return "fumble!"
	}
	return "failure!"
}

// Classify rates roll against target.
func Classify(target, roll uint32) Outcome {
	switch {
	case (target < 50 && roll > 95) || roll == 100:
		return Fumble
	case roll == 1:
		return CriticalSuccess
	case roll <= target/5:
		return ExtremeSuccess
	case roll <= target/2:
		return HardSuccess
	case roll <= target:
		return Success
	}
	return Failure
}

// rollDigit rolls a ten-sided die as a digit in [0, 9].
func rollDigit(roller dice.Roller) uint32 {
	return roller.RollNumber(10) - 1
}

func combine(tens, units uint32) uint32 {
	if tens == 0 && units == 0 {
		return 100
	}
	return tens*10 + units
}

// CheckRoll is the result of a skill check.
//
// Invariant: Result is one of Rolls, chosen by the modifier.
type CheckRoll struct {
	Check   Check
	Target  uint32
	Rolls   []uint32
	Result  uint32
	Outcome Outcome
}

// RollCheck rolls a check against target. The units die is rolled once and
// shared by every tens die; bonus dice keep the lowest result and penalty
// dice the highest.
//
// Precondition: roller must be non-nil.
func RollCheck(c Check, target uint32, roller dice.Roller) CheckRoll {
	units := rollDigit(roller)
	rolls := make([]uint32, c.Modifier.tensDice())
	for i := range rolls {
		rolls[i] = combine(rollDigit(roller), units)
	}

	result := rolls[0]
	for _, r := range rolls[1:] {
		switch c.Modifier {
		case OneBonus, TwoBonus:
			result = min(result, r)
		case OnePenalty, TwoPenalty:
			result = max(result, r)
		}
	}
	return CheckRoll{
		Check:   c,
		Target:  target,
		Rolls:   rolls,
		Result:  result,
		Outcome: Classify(target, result),
	}
}

// AdvancementRoll is the result of an advancement roll.
//
// Invariant: NewSkill == Existing + Advance, and Advance is 0 unless Successful.
// Advance is cut short so NewSkill never exceeds math.MaxUint32.
type AdvancementRoll struct {
	Advancement Advancement
	Existing    uint32
	Roll        uint32
	Successful  bool
	Advance     uint32
	NewSkill    uint32
}

// RollAdvancement rolls to improve a skill. The skill advances by 1 to 10
// when the roll is below the existing value or above 95.
//
// Precondition: roller must be non-nil.
func RollAdvancement(a Advancement, existing uint32, roller dice.Roller) AdvancementRoll {
	units := rollDigit(roller)
	roll := combine(rollDigit(roller), units)
	res := AdvancementRoll{Advancement: a, Existing: existing, Roll: roll, NewSkill: existing}
	if roll < existing || roll > 95 {
		res.Successful = true
		res.Advance = min(rollDigit(roller)+1, math.MaxUint32-existing)
		res.NewSkill = existing + res.Advance
	}
	return res
}
