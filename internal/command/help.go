package command

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/dicebot/internal/render"
)

// UnknownTopicError is returned by help for a topic that is not a command.
type UnknownTopicError struct {
	Topic string
}

func (e *UnknownTopicError) Error() string {
	return fmt.Sprintf("no help for '%s'", e.Topic)
}

func synopsis(def *Definition) string {
	s := Prefix + def.Name
	if def.Usage != "" {
		s += " " + def.Usage
	}
	return s
}

// Help renders the command list, or usage for one command when topic is set.
func (r *Registry) Help(topic string) (render.Message, error) {
	if topic == "" {
		var b strings.Builder
		b.WriteString("Commands:")
		for _, def := range r.Definitions() {
			fmt.Fprintf(&b, "\n%s - %s", synopsis(def), def.Help)
		}
		return render.Text(b.String()), nil
	}

	def, ok := r.Resolve(strings.TrimPrefix(topic, Prefix))
	if !ok {
		return render.Message{}, &UnknownTopicError{Topic: topic}
	}
	lines := []render.Line{
		{Label: "Usage", Value: synopsis(def)},
		{Label: "Description", Value: def.Help},
	}
	if len(def.Aliases) > 0 {
		aliases := make([]string, len(def.Aliases))
		for i, a := range def.Aliases {
			aliases[i] = Prefix + a
		}
		lines = append(lines, render.Line{Label: "Aliases", Value: strings.Join(aliases, ", ")})
	}
	return render.Lines(lines...), nil
}
