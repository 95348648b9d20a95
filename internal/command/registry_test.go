package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Len(t, r.Definitions(), len(BuiltinCommands()))
}

func TestResolve_NamesAndAliases(t *testing.T) {
	r := DefaultRegistry()
	for word, want := range map[string]string{
		"r":          "roll",
		"roll":       "roll",
		"pool":       "pool",
		"rp":         "pool",
		"chance":     "chance",
		"cthroll":    "cthroll",
		"cthadv":     "cthadv",
		"get":        "get",
		"set":        "set",
		"del":        "del",
		"variables":  "variables",
		"register":   "register",
		"check":      "check",
		"unregister": "unregister",
		"help":       "help",
	} {
		def, ok := r.Resolve(word)
		require.True(t, ok, word)
		assert.Equal(t, want, def.Name)
	}
}

func TestResolve_IsExact(t *testing.T) {
	r := DefaultRegistry()
	for _, word := range []string{"ROLL", "Roll", "rol", "R", "cth", "pools", ""} {
		_, ok := r.Resolve(word)
		assert.False(t, ok, word)
	}
}

func TestNewRegistry_Collisions(t *testing.T) {
	parse := func(string) (Command, error) { return ChanceCommand{}, nil }

	_, err := NewRegistry([]Definition{{Name: "a", Parse: parse}, {Name: "a", Parse: parse}})
	assert.Error(t, err)

	_, err = NewRegistry([]Definition{{Name: "a", Aliases: []string{"x"}, Parse: parse}, {Name: "b", Aliases: []string{"x"}, Parse: parse}})
	assert.Error(t, err)

	_, err = NewRegistry([]Definition{{Name: "a", Aliases: []string{"b"}, Parse: parse}, {Name: "b", Parse: parse}})
	assert.Error(t, err)

	_, err = NewRegistry([]Definition{{Name: "a"}})
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	cases := []struct {
		in         string
		word, args string
		ok         bool
	}{
		{"!roll 2d6", "roll", "2d6", true},
		{"  !r\t2d6 + 3  ", "r", "2d6 + 3", true},
		{"!chance", "chance", "", true},
		{"roll 2d6", "", "", false},
		{"!", "", "", false},
		{"! roll", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		word, args, ok := Split(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.word, word, tc.in)
		assert.Equal(t, tc.args, args, tc.in)
	}
}

func TestParse_Commands(t *testing.T) {
	r := DefaultRegistry()
	cases := []struct {
		in   string
		want Command
	}{
		{"!chance", ChanceCommand{}},
		{"!get str", GetVariableCommand{Variable: "str"}},
		{"!set str = 5", SetVariableCommand{Variable: "str", Value: 5}},
		{"!set luck -3", SetVariableCommand{Variable: "luck", Value: -3}},
		{"!set big=2147483647", SetVariableCommand{Variable: "big", Value: 2147483647}},
		{"!set small = -2147483648", SetVariableCommand{Variable: "small", Value: -2147483648}},
		{"!del str", DeleteVariableCommand{Variable: "str"}},
		{"!variables", ListVariablesCommand{}},
		{"!register  hunter 2 ", RegisterCommand{Password: "hunter 2"}},
		{"!register", RegisterCommand{}},
		{"!check pw", CheckCommand{Password: "pw"}},
		{"!unregister now", UnregisterCommand{}},
		{"!help", HelpCommand{}},
		{"!help roll", HelpCommand{Topic: "roll"}},
	}
	for _, tc := range cases {
		got, err := r.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParse_Errors(t *testing.T) {
	r := DefaultRegistry()
	for _, in := range []string{
		"!roll",
		"!roll 2d6 junk",
		"!pool",
		"!chance 3",
		"!cthroll 3 + abc + bob - 4",
		"!cthadv b:50",
		"!get",
		"!get 12",
		"!get a b",
		"!set x",
		"!set x = y",
		"!set x = 2147483648",
		"!set x = -2147483649",
		"!del",
		"!variables all",
		"!help roll pool",
	} {
		_, err := r.Parse(in)
		assert.Error(t, err, in)
		assert.NotErrorIs(t, err, ErrNotCommand, in)
	}
}

func TestParse_NotCommand(t *testing.T) {
	r := DefaultRegistry()
	for _, in := range []string{"hello", "!nope 2d6", "!ROLL 2d6", "roll 2d6", "!"} {
		_, err := r.Parse(in)
		assert.ErrorIs(t, err, ErrNotCommand, in)
	}
}

func TestIsSecure(t *testing.T) {
	secure := map[string]bool{"register": true, "check": true, "unregister": true}
	r := DefaultRegistry()
	for _, def := range r.Definitions() {
		cmd, err := r.Parse(sampleInvocation(def.Name))
		require.NoError(t, err, def.Name)
		assert.Equal(t, secure[def.Name], IsSecure(cmd), def.Name)
		assert.Equal(t, def.Name, cmd.Name())
	}
}

func sampleInvocation(name string) string {
	args := map[string]string{
		"roll":    "1d6",
		"pool":    "3",
		"cthroll": "50",
		"cthadv":  "50",
		"get":     "x",
		"set":     "x = 1",
		"del":     "x",
	}
	return "!" + name + " " + args[name]
}

func TestHelp(t *testing.T) {
	r := DefaultRegistry()

	all, err := r.Help("")
	require.NoError(t, err)
	assert.Contains(t, all.Plain, "!roll <dice> - Roll dice")
	assert.Contains(t, all.HTML, "<br/>")

	one, err := r.Help("r")
	require.NoError(t, err)
	assert.Equal(t, "Usage: !roll <dice>\nDescription: Roll dice, e.g. !roll 4d6k3 + str - 2\nAliases: !r", one.Plain)

	_, err = r.Help("bogus")
	var topicErr *UnknownTopicError
	require.ErrorAs(t, err, &topicErr)
	assert.Equal(t, "no help for 'bogus'", err.Error())
}

// Property: any message whose first character is not '!' is never a command.
func TestPropertyNonBangIsNotCommand(t *testing.T) {
	r := DefaultRegistry()
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 +\-]{0,30}`).Draw(t, "text")
		if _, err := r.Parse(text); err != ErrNotCommand {
			t.Fatalf("Parse(%q) = %v, want ErrNotCommand", text, err)
		}
	})
}
