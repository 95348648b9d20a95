// Package cthulhu implements Call of Cthulhu percentile skill checks with
// bonus and penalty dice, and skill advancement rolls.
package cthulhu

import (
	"strings"

	"github.com/cory-johannsen/dicebot/internal/dice/lex"
	"github.com/cory-johannsen/dicebot/internal/variables"
)

// Modifier adds bonus or penalty tens dice to a check.
type Modifier int

const (
	Normal Modifier = iota
	OneBonus
	TwoBonus
	OnePenalty
	TwoPenalty
)

var modifierCodes = map[string]Modifier{
	"":   Normal,
	"b":  OneBonus,
	"bb": TwoBonus,
	"p":  OnePenalty,
	"pp": TwoPenalty,
}

// tensDice returns how many tens dice the modifier rolls.
func (m Modifier) tensDice() int {
	switch m {
	case OneBonus, OnePenalty:
		return 2
	case TwoBonus, TwoPenalty:
		return 3
	}
	return 1
}

// String returns the modifier as shown in results, or "" for Normal.
func (m Modifier) String() string {
	switch m {
	case OneBonus:
		return "one bonus die"
	case TwoBonus:
		return "two bonus dice"
	case OnePenalty:
		return "one penalty die"
	case TwoPenalty:
		return "two penalty dice"
	}
	return ""
}

// Check is a parsed skill check.
type Check struct {
	Target   variables.Amount
	Modifier Modifier
}

// ParseCheck parses "[modifier:] amount", where modifier is one of b, bb, p,
// or pp and amount is a number or a variable name.
//
// Postcondition: returns a Check, or a *lex.Error. Anything after the amount
// is rejected.
func ParseCheck(s string) (Check, error) {
	mod := Normal
	rest := s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		code := strings.TrimSpace(s[:i])
		m, ok := modifierCodes[code]
		if !ok {
			return Check{}, lex.Errorf(s, "unknown modifier %q (expected b, bb, p, or pp)", code)
		}
		mod = m
		rest = s[i+1:]
	}
	target, err := parseAmount(rest)
	if err != nil {
		return Check{}, err
	}
	return Check{Target: target, Modifier: mod}, nil
}

// Advancement is a parsed advancement roll for an existing skill value.
type Advancement struct {
	Existing variables.Amount
}

// ParseAdvancement parses a single amount with no modifier.
func ParseAdvancement(s string) (Advancement, error) {
	existing, err := parseAmount(s)
	if err != nil {
		return Advancement{}, err
	}
	return Advancement{Existing: existing}, nil
}

func parseAmount(s string) (variables.Amount, error) {
	amt, rest, err := variables.ParseAmount(s)
	if err != nil {
		return variables.Amount{}, err
	}
	if err := lex.End(rest); err != nil {
		return variables.Amount{}, err
	}
	return amt, nil
}
