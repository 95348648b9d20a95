package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotCommand marks text that is not addressed to the bot. It is not a
// failure; callers ignore such messages.
var ErrNotCommand = errors.New("not a command")

// Prefix starts every command word.
const Prefix = "!"

// Definition describes one command word.
type Definition struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown by help.
	Usage string
	// Help is the one-line description shown by help.
	Help string
	// Parse turns the text after the command word into a Command.
	Parse func(args string) (Command, error)
}

// Registry maps command names and aliases to definitions. Lookups are exact:
// case matters and abbreviations are not accepted.
type Registry struct {
	commands map[string]*Definition // canonical name → definition
	aliases  map[string]string      // alias → canonical name
}

// NewRegistry creates a Registry populated with the given definitions.
//
// Precondition: No two definitions may share a canonical name or alias.
// Postcondition: Returns a Registry or an error on name/alias collisions.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Definition, len(defs)),
		aliases:  make(map[string]string),
	}

	for i := range defs {
		def := &defs[i]
		if def.Parse == nil {
			return nil, fmt.Errorf("command %q has no parser", def.Name)
		}
		if _, exists := r.commands[def.Name]; exists {
			return nil, fmt.Errorf("duplicate command name: %q", def.Name)
		}
		if _, exists := r.aliases[def.Name]; exists {
			return nil, fmt.Errorf("command name %q conflicts with an existing alias", def.Name)
		}
		r.commands[def.Name] = def

		for _, alias := range def.Aliases {
			if _, exists := r.commands[alias]; exists {
				return nil, fmt.Errorf("alias %q conflicts with command name %q", alias, alias)
			}
			if existing, exists := r.aliases[alias]; exists {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing, def.Name)
			}
			r.aliases[alias] = def.Name
		}
	}
	return r, nil
}

// DefaultRegistry creates a Registry with all built-in commands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a definition by name or alias.
func (r *Registry) Resolve(word string) (*Definition, bool) {
	if def, ok := r.commands[word]; ok {
		return def, true
	}
	if canonical, ok := r.aliases[word]; ok {
		return r.commands[canonical], true
	}
	return nil, false
}

// Definitions returns all definitions sorted by name.
func (r *Registry) Definitions() []*Definition {
	result := make([]*Definition, 0, len(r.commands))
	for _, def := range r.commands {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Split separates "!word args" into the command word and its argument text.
//
// Postcondition: ok is false when text does not begin with Prefix followed by
// at least one non-space character.
func Split(text string) (word, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, Prefix) {
		return "", "", false
	}
	text = text[len(Prefix):]
	end := strings.IndexAny(text, " \t\r\n")
	if end < 0 {
		word, args = text, ""
	} else {
		word, args = text[:end], strings.TrimSpace(text[end:])
	}
	if word == "" {
		return "", "", false
	}
	return word, args, true
}

// Parse parses a chat message into a Command.
//
// Postcondition: returns ErrNotCommand when text does not start with a known
// command word; otherwise a Command or the command's parse error.
func (r *Registry) Parse(text string) (Command, error) {
	word, args, ok := Split(text)
	if !ok {
		return nil, ErrNotCommand
	}
	def, ok := r.Resolve(word)
	if !ok {
		return nil, ErrNotCommand
	}
	return def.Parse(args)
}
