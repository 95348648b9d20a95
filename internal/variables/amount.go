package variables

import (
	"strconv"

	"github.com/cory-johannsen/dicebot/internal/dice/lex"
)

// Amount is either a non-negative integer literal or a variable reference.
type Amount struct {
	// Literal is the value when Name is empty.
	Literal uint32
	// Name is the referenced variable, or empty for a literal.
	Name string
}

// IsVariable reports whether the amount refers to a variable.
func (a Amount) IsVariable() bool {
	return a.Name != ""
}

// Value returns the amount's numeric value. Negative variable values clamp to zero.
//
// Precondition: when a.IsVariable(), vals must contain a.Name (see Resolve).
func (a Amount) Value(vals Values) uint32 {
	if !a.IsVariable() {
		return a.Literal
	}
	v, ok := vals[a.Name]
	if !ok {
		panic("variables: Amount.Value precondition violated: unresolved variable " + a.Name)
	}
	if v < 0 {
		return 0
	}
	return uint32(v)
}

// Names returns the variable names referenced by the amount.
func (a Amount) Names() []string {
	if a.IsVariable() {
		return []string{a.Name}
	}
	return nil
}

// String returns the literal or the variable name.
func (a Amount) String() string {
	if a.IsVariable() {
		return a.Name
	}
	return strconv.FormatUint(uint64(a.Literal), 10)
}

// ParseAmount consumes a single Amount: a digit run or a run of letters.
func ParseAmount(s string) (Amount, string, error) {
	switch {
	case lex.PeekDigit(s):
		v, rest, err := lex.Uint32(s)
		if err != nil {
			return Amount{}, s, err
		}
		return Amount{Literal: v}, rest, nil
	case lex.PeekLetter(s):
		name, rest, err := lex.Word(s)
		if err != nil {
			return Amount{}, s, err
		}
		return Amount{Name: name}, rest, nil
	}
	s = lex.Whitespace(s)
	return Amount{}, s, lex.Errorf(s, "expected a number or variable name")
}
