package cofd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/dicebot/internal/render"
)

// MaxDisplayedRolls caps the rolled values listed in a pool result.
const MaxDisplayedRolls = 15

// FormatValues lists values in roll order, separated by ", ". Lists longer
// than MaxDisplayedRolls end with ", and N more".
func FormatValues(values []uint32) string {
	shown := values
	if len(shown) > MaxDisplayedRolls {
		shown = shown[:MaxDisplayedRolls]
	}
	parts := make([]string, len(shown))
	for i, v := range shown {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	s := strings.Join(parts, ", ")
	if extra := len(values) - len(shown); extra > 0 {
		s += fmt.Sprintf(", and %d more", extra)
	}
	return s
}

// Outcome describes the result in words: the success count, or
// "dramatic failure!" / "failure!" when there are none.
func (r PoolRoll) Outcome() string {
	n := r.Successes()
	switch {
	case n == 0 && r.DramaticFailure():
		return "dramatic failure!"
	case n == 0:
		return "failure!"
	case n == 1:
		return "1 success" + r.exceptionalSuffix()
	}
	return fmt.Sprintf("%d successes%s", n, r.exceptionalSuffix())
}

func (r PoolRoll) exceptionalSuffix() string {
	if r.Exceptional() {
		return " (exceptional success!)"
	}
	return ""
}

// Render formats a rolled pool for the chat.
func Render(r PoolRoll) render.Message {
	return render.Lines(
		render.Line{Label: "Pool", Value: r.Pool.String()},
		render.Line{Label: "Rolls", Value: FormatValues(r.Values())},
		render.Line{Label: "Result", Value: r.Outcome()},
	)
}
