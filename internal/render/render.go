// Package render builds the paired plain-text and HTML renderings returned to
// the chat collaborator.
package render

import (
	"html"
	"strings"
)

// Message is a rendered reply. HTML is derived from the same content as Plain.
type Message struct {
	Plain string
	HTML  string
}

// Line is one labelled line of output, e.g. "Result: 12 (5 + 4 + 3)".
type Line struct {
	Label string
	Value string
}

// Lines renders labelled lines. Plain text joins "Label: Value" lines with
// newlines; HTML wraps each line in a paragraph with a bold label.
func Lines(lines ...Line) Message {
	var plain, markup strings.Builder
	for i, l := range lines {
		if i > 0 {
			plain.WriteByte('\n')
		}
		plain.WriteString(l.Label)
		plain.WriteString(": ")
		plain.WriteString(l.Value)

		markup.WriteString("<p><strong>")
		markup.WriteString(html.EscapeString(l.Label))
		markup.WriteString(":</strong> ")
		markup.WriteString(Escape(l.Value))
		markup.WriteString("</p>")
	}
	return Message{Plain: plain.String(), HTML: markup.String()}
}

// Text renders free text as a single paragraph.
func Text(s string) Message {
	return Message{Plain: s, HTML: "<p>" + Escape(s) + "</p>"}
}

// Append concatenates two messages, separating the plain texts with a newline.
func (m Message) Append(other Message) Message {
	switch {
	case m.Plain == "":
		return other
	case other.Plain == "":
		return m
	}
	return Message{Plain: m.Plain + "\n" + other.Plain, HTML: m.HTML + other.HTML}
}

// Escape HTML-escapes s and turns embedded newlines into line breaks.
func Escape(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br/>")
}
