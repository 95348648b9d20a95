package cthulhu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/dicebot/internal/render"
)

func describeTarget(value uint32, c Check) string {
	s := strconv.FormatUint(uint64(value), 10)
	if c.Target.IsVariable() {
		s += " (" + c.Target.Name + ")"
	}
	if mod := c.Modifier.String(); mod != "" {
		s += ", " + mod
	}
	return s
}

// Render formats a skill check for the chat.
func (r CheckRoll) Render() render.Message {
	lines := []render.Line{{Label: "Target", Value: describeTarget(r.Target, r.Check)}}
	if len(r.Rolls) > 1 {
		parts := make([]string, len(r.Rolls))
		for i, v := range r.Rolls {
			parts[i] = strconv.FormatUint(uint64(v), 10)
		}
		lines = append(lines, render.Line{Label: "Rolls", Value: strings.Join(parts, ", ")})
	}
	lines = append(lines, render.Line{Label: "Result", Value: fmt.Sprintf("%d, %s", r.Result, r.Outcome)})
	return render.Lines(lines...)
}

// Render formats an advancement roll for the chat.
func (r AdvancementRoll) Render() render.Message {
	skill := strconv.FormatUint(uint64(r.Existing), 10)
	if r.Advancement.Existing.IsVariable() {
		skill += " (" + r.Advancement.Existing.Name + ")"
	}
	result := fmt.Sprintf("failure! Skill remains at %d.", r.Existing)
	if r.Successful {
		result = fmt.Sprintf("success! Skill advances by %d to %d.", r.Advance, r.NewSkill)
	}
	return render.Lines(
		render.Line{Label: "Skill", Value: skill},
		render.Line{Label: "Roll", Value: strconv.FormatUint(uint64(r.Roll), 10)},
		render.Line{Label: "Result", Value: result},
	)
}
