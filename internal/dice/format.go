package dice

import (
	"strconv"
	"strings"

	"github.com/cory-johannsen/dicebot/internal/dice/lex"
	"github.com/cory-johannsen/dicebot/internal/render"
)

// String returns the bonus value.
func (b BonusRoll) String() string {
	return strconv.FormatUint(uint64(b.Bonus), 10)
}

// String returns the variable's value.
func (v VariableRoll) String() string {
	return strconv.FormatInt(int64(v.Amount), 10)
}

// String renders a single die as its value, and several dice as
// "total (a + b + [c])" where bracketed rolls were dropped.
func (d DiceRoll) String() string {
	if len(d.Rolls) == 1 {
		return strconv.FormatUint(uint64(d.Rolls[0]), 10)
	}
	var b strings.Builder
	b.WriteString(strconv.FormatInt(d.Value(), 10))
	b.WriteString(" (")
	for i, r := range d.Rolls {
		if i > 0 {
			b.WriteString(" + ")
		}
		v := strconv.FormatUint(uint64(r), 10)
		if d.IsKept(i) {
			b.WriteString(v)
		} else {
			b.WriteString("[" + v + "]")
		}
	}
	b.WriteString(")")
	return b.String()
}

// String renders the total followed by a parenthesised breakdown, e.g.
// "12 (9 (5 + 4) + 3)". A single positive term renders as that term alone.
// A negative variable folds into its term's sign, so "1d4 + bob" with bob=-2
// shows "3 - 2" rather than "3 + -2".
func (r ExpressionRoll) String() string {
	if len(r.Terms) == 1 {
		if sign, shown := displayTerm(r.Terms[0]); sign == lex.Plus {
			return shown
		}
	}
	var b strings.Builder
	b.WriteString(strconv.FormatInt(r.Total(), 10))
	b.WriteString(" (")
	for i, t := range r.Terms {
		sign, shown := displayTerm(t)
		switch {
		case i == 0 && sign == lex.Minus:
			b.WriteString("-")
		case i > 0:
			b.WriteString(" " + sign.String() + " ")
		}
		b.WriteString(shown)
	}
	b.WriteString(")")
	return b.String()
}

// displayTerm returns the sign and unsigned text a term is shown with.
func displayTerm(t TermRoll) (lex.Sign, string) {
	v, ok := t.Roll.(VariableRoll)
	if !ok || v.Amount >= 0 {
		return t.Sign, t.Roll.String()
	}
	magnitude := strconv.FormatInt(-int64(v.Amount), 10)
	if t.Sign == lex.Minus {
		return lex.Plus, magnitude
	}
	return lex.Minus, magnitude
}

// Render formats an evaluated expression for the chat.
func Render(expr Expression, roll ExpressionRoll) render.Message {
	return render.Lines(
		render.Line{Label: "Dice", Value: expr.String()},
		render.Line{Label: "Result", Value: roll.String()},
	)
}
