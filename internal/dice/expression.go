// Package dice provides the randomness abstraction, the additive dice-term
// grammar ("2d6+3-1d4k1"), its evaluator, and its formatter.
package dice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/dicebot/internal/dice/lex"
	"github.com/cory-johannsen/dicebot/internal/variables"
)

// Element is one unsigned operand of a dice-term expression: a Bonus, a Dice
// specification, or a Variable reference.
type Element interface {
	fmt.Stringer
	element()
}

// Bonus is a flat non-negative bonus.
type Bonus uint32

func (Bonus) element() {}

// String returns the bonus in decimal.
func (b Bonus) String() string {
	return strconv.FormatUint(uint64(b), 10)
}

// Dice is a dice specification. Sorted descending, the rolls at indices
// [Drop, Keep) are summed; the rest are rolled and displayed but dropped.
//
// Invariant: 0 < Keep <= Count and Drop < Keep.
type Dice struct {
	Count uint32
	Sides uint32
	Keep  uint32
	Drop  uint32
}

func (Dice) element() {}

// ModifierKind identifies a keep-highest or drop-highest modifier.
type ModifierKind int

const (
	// NoModifier keeps every die.
	NoModifier ModifierKind = iota
	// KeepHighest keeps the N highest dice.
	KeepHighest
	// DropHighest drops the N highest dice.
	DropHighest
)

// Modifier is a keep/drop request as written, before clamping.
type Modifier struct {
	Kind  ModifierKind
	Value uint32
}

// NewDice builds a dice specification and clamps the modifier into range.
// A keep of 0 or greater than count keeps all dice; a drop of count or more
// drops none.
//
// Precondition: count >= 1 and sides >= 1.
// Postcondition: the returned Dice satisfies 0 < Keep <= Count and Drop < Keep.
func NewDice(count, sides uint32, mod Modifier) Dice {
	d := Dice{Count: count, Sides: sides, Keep: count}
	switch mod.Kind {
	case KeepHighest:
		if mod.Value > 0 && mod.Value <= count {
			d.Keep = mod.Value
		}
	case DropHighest:
		if mod.Value < count {
			d.Drop = mod.Value
		}
	}
	return d
}

// String renders the term in dice notation, e.g. "4d6k3" or "4d6dh1".
func (d Dice) String() string {
	s := fmt.Sprintf("%dd%d", d.Count, d.Sides)
	if d.Keep != d.Count {
		s += fmt.Sprintf("k%d", d.Keep)
	}
	if d.Drop != 0 {
		s += fmt.Sprintf("dh%d", d.Drop)
	}
	return s
}

// Variable references a stored integer by name. Value is meaningful only
// after Expression.Bind.
type Variable struct {
	Name  string
	Value int32
	bound bool
}

func (Variable) element() {}

// String returns the variable name.
func (v Variable) String() string {
	return v.Name
}

// Term is an element with the sign connecting it to the expression.
type Term struct {
	Sign    lex.Sign
	Element Element
}

// Expression is an ordered list of signed terms. Order matters for display
// only; evaluation is a commutative sum.
type Expression struct {
	Terms []Term
}

// String renders the expression with " + " and " - " separators. A leading
// positive term has no sign.
func (e Expression) String() string {
	var b strings.Builder
	for i, t := range e.Terms {
		switch {
		case i == 0 && t.Sign == lex.Minus:
			b.WriteString("-")
		case i > 0:
			b.WriteString(" " + t.Sign.String() + " ")
		}
		b.WriteString(t.Element.String())
	}
	return b.String()
}

// VariableNames returns the distinct variable names referenced, in order of
// first appearance.
func (e Expression) VariableNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, t := range e.Terms {
		if v, ok := t.Element.(Variable); ok && !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
	}
	return names
}

// Bind returns a copy of the expression with every variable bound to its
// resolved value.
//
// Postcondition: returns a *variables.NotFoundError naming the first variable
// missing from vals; the receiver is never modified.
func (e Expression) Bind(vals variables.Values) (Expression, error) {
	terms := make([]Term, len(e.Terms))
	for i, t := range e.Terms {
		if v, ok := t.Element.(Variable); ok {
			val, found := vals[v.Name]
			if !found {
				return Expression{}, &variables.NotFoundError{Name: v.Name}
			}
			t.Element = Variable{Name: v.Name, Value: val, bound: true}
		}
		terms[i] = t
	}
	return Expression{Terms: terms}, nil
}
