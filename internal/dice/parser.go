package dice

import (
	"strings"

	"github.com/cory-johannsen/dicebot/internal/dice/lex"
)

// MaxCount is the largest dice count a single specification may request.
const MaxCount = 1000

// Parse parses an additive dice-term expression.
//
//	expr           := signed_element (signed_element)*
//	signed_element := sign? element
//	element        := dice | bonus | variable
//	dice           := digits "d" digits (keep_mod | drop_mod)*
//	keep_mod       := "k" digits
//	drop_mod       := "dh" digits
//	bonus          := digits
//	variable       := letters
//
// Whitespace is allowed before every token. Only the first element may omit
// its sign. When several keep/drop modifiers are written on one dice
// specification, the last one wins.
//
// Postcondition: returns an Expression with at least one term, or a *lex.Error.
func Parse(s string) (Expression, error) {
	var terms []Term
	rest := s
	for {
		sign, after, hasSign := lex.SignPrefix(rest)
		if !hasSign && len(terms) > 0 {
			break
		}
		el, after, err := parseElement(after)
		if err != nil {
			return Expression{}, err
		}
		terms = append(terms, Term{Sign: sign, Element: el})
		rest = after
		if lex.Whitespace(rest) == "" {
			break
		}
	}
	if err := lex.End(rest); err != nil {
		return Expression{}, err
	}
	return Expression{Terms: terms}, nil
}

// MustParse parses s and panics on error. Useful in tests and constants.
//
// Precondition: s must be a valid dice-term expression.
func MustParse(s string) Expression {
	e, err := Parse(s)
	if err != nil {
		panic("dice: MustParse failed for expression " + s + ": " + err.Error())
	}
	return e
}

func parseElement(s string) (Element, string, error) {
	s = lex.Whitespace(s)
	if lex.PeekLetter(s) {
		name, rest, err := lex.Word(s)
		if err != nil {
			return nil, s, err
		}
		return Variable{Name: name}, rest, nil
	}

	if !lex.PeekDigit(s) {
		return nil, s, lex.Errorf(s, "expected dice, a number, or a variable")
	}
	n, rest, err := lex.Uint32(s)
	if err != nil {
		return nil, s, err
	}

	afterD, isDice := lex.Tag(rest, "d")
	switch {
	case isDice && lex.PeekDigit(afterD):
	case strings.HasPrefix(rest, "d"):
		// "3dh2" and "3d" are dice-shaped but malformed. A detached 'd', as in
		// "3 dex", is left for the caller to report as stray input.
		return nil, rest, lex.Errorf(rest, "expected number of sides after 'd'")
	default:
		return Bonus(n), rest, nil
	}
	if n == 0 {
		return nil, s, lex.Errorf(s, "dice count must be at least 1")
	}
	if n > MaxCount {
		return nil, s, lex.Errorf(s, "cannot roll more than %d dice at once", MaxCount)
	}

	sides, rest, err := lex.Uint32(afterD)
	if err != nil {
		return nil, afterD, err
	}
	if sides == 0 {
		return nil, afterD, lex.Errorf(afterD, "dice must have at least 1 side")
	}

	mod := Modifier{Kind: NoModifier}
	for {
		if after, ok := lex.Tag(rest, "dh"); ok {
			v, after, err := lex.Uint32(after)
			if err != nil {
				return nil, after, err
			}
			mod = Modifier{Kind: DropHighest, Value: v}
			rest = after
			continue
		}
		if after, ok := lex.Tag(rest, "k"); ok {
			v, after, err := lex.Uint32(after)
			if err != nil {
				return nil, after, err
			}
			mod = Modifier{Kind: KeepHighest, Value: v}
			rest = after
			continue
		}
		break
	}

	return NewDice(n, sides, mod), rest, nil
}
