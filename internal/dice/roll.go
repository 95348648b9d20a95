package dice

import (
	"sort"

	"github.com/cory-johannsen/dicebot/internal/dice/lex"
)

// ElementRoll is the evaluated form of one Element.
type ElementRoll interface {
	// Value is the element's contribution before its sign is applied.
	Value() int64
	String() string
}

// BonusRoll is an evaluated flat bonus.
type BonusRoll struct {
	Bonus uint32
}

// Value returns the bonus.
func (b BonusRoll) Value() int64 { return int64(b.Bonus) }

// VariableRoll is an evaluated variable reference.
type VariableRoll struct {
	Name   string
	Amount int32
}

// Value returns the variable's value.
func (v VariableRoll) Value() int64 { return int64(v.Amount) }

// DiceRoll holds every die rolled for one Dice specification.
//
// Invariant: Rolls is sorted descending and len(Rolls) == Dice.Count.
type DiceRoll struct {
	Dice  Dice
	Rolls []uint32
}

// IsKept reports whether the roll at index i counts toward the total.
func (d DiceRoll) IsKept(i int) bool {
	return uint32(i) >= d.Dice.Drop && uint32(i) < d.Dice.Keep
}

// Kept returns the rolls that count toward the total, highest first.
func (d DiceRoll) Kept() []uint32 {
	return d.Rolls[d.Dice.Drop:d.Dice.Keep]
}

// Value returns the sum of the kept rolls.
func (d DiceRoll) Value() int64 {
	var total int64
	for _, r := range d.Kept() {
		total += int64(r)
	}
	return total
}

// TermRoll is an evaluated signed term.
type TermRoll struct {
	Sign lex.Sign
	Roll ElementRoll
}

// Value returns the term's signed contribution.
func (t TermRoll) Value() int64 {
	if t.Sign == lex.Minus {
		return -t.Roll.Value()
	}
	return t.Roll.Value()
}

// ExpressionRoll is the immutable result of evaluating an Expression.
type ExpressionRoll struct {
	Terms []TermRoll
}

// Total returns the signed sum of all terms.
//
// Postcondition: Total() == sum(t.Value() for t in Terms).
func (r ExpressionRoll) Total() int64 {
	var total int64
	for _, t := range r.Terms {
		total += t.Value()
	}
	return total
}

// Roll evaluates expr with roller.
//
// Precondition: expr must come from Parse, and every Variable must be bound
// via Expression.Bind; roller must be non-nil.
// Postcondition: each DiceRoll holds Count rolls sorted descending.
func Roll(expr Expression, roller Roller) ExpressionRoll {
	terms := make([]TermRoll, 0, len(expr.Terms))
	for _, t := range expr.Terms {
		terms = append(terms, TermRoll{Sign: t.Sign, Roll: rollElement(t.Element, roller)})
	}
	return ExpressionRoll{Terms: terms}
}

func rollElement(el Element, roller Roller) ElementRoll {
	switch e := el.(type) {
	case Bonus:
		return BonusRoll{Bonus: uint32(e)}
	case Variable:
		if !e.bound {
			panic("dice: Roll precondition violated: variable " + e.Name + " is unbound")
		}
		return VariableRoll{Name: e.Name, Amount: e.Value}
	case Dice:
		return RollDice(e, roller)
	default:
		panic("dice: unknown element type")
	}
}

// RollDice rolls d.Count dice of d.Sides sides and sorts them descending.
func RollDice(d Dice, roller Roller) DiceRoll {
	rolls := make([]uint32, d.Count)
	for i := range rolls {
		rolls[i] = roller.RollNumber(d.Sides)
	}
	sort.Slice(rolls, func(i, j int) bool { return rolls[i] > rolls[j] })
	return DiceRoll{Dice: d, Rolls: rolls}
}
