package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/dicebot/internal/render"
)

func TestLines(t *testing.T) {
	m := render.Lines(
		render.Line{Label: "Dice", Value: "2d6 + 3"},
		render.Line{Label: "Result", Value: "12 (9 (5 + 4) + 3)"},
	)
	assert.Equal(t, "Dice: 2d6 + 3\nResult: 12 (9 (5 + 4) + 3)", m.Plain)
	assert.Equal(t,
		"<p><strong>Dice:</strong> 2d6 + 3</p><p><strong>Result:</strong> 12 (9 (5 + 4) + 3)</p>",
		m.HTML)
}

func TestText_EscapesMarkupAndNewlines(t *testing.T) {
	m := render.Text("a < b\nc & d")
	assert.Equal(t, "a < b\nc & d", m.Plain)
	assert.Equal(t, "<p>a &lt; b<br/>c &amp; d</p>", m.HTML)
}

func TestAppend(t *testing.T) {
	a := render.Text("one")
	b := render.Text("two")
	got := a.Append(b)
	assert.Equal(t, "one\ntwo", got.Plain)
	assert.Equal(t, "<p>one</p><p>two</p>", got.HTML)

	assert.Equal(t, b, render.Message{}.Append(b))
	assert.Equal(t, a, a.Append(render.Message{}))
}
