package command

import (
	"math"
	"strings"

	"github.com/cory-johannsen/dicebot/internal/cofd"
	"github.com/cory-johannsen/dicebot/internal/cthulhu"
	"github.com/cory-johannsen/dicebot/internal/dice"
	"github.com/cory-johannsen/dicebot/internal/dice/lex"
)

// BuiltinCommands returns every command the bot understands.
func BuiltinCommands() []Definition {
	return []Definition{
		{Name: "roll", Aliases: []string{"r"}, Usage: "<dice>", Help: "Roll dice, e.g. !roll 4d6k3 + str - 2", Parse: parseRoll},
		{Name: "pool", Aliases: []string{"rp"}, Usage: "<count>[n|e|r][s<N>]", Help: "Roll a Chronicles of Darkness dice pool", Parse: parsePool},
		{Name: "chance", Usage: "", Help: "Roll a chance die", Parse: parseChance},
		{Name: "cthroll", Usage: "[b|bb|p|pp:]<target>", Help: "Roll a Call of Cthulhu skill check", Parse: parseCthRoll},
		{Name: "cthadv", Usage: "<skill>", Help: "Roll to advance a Call of Cthulhu skill", Parse: parseCthAdvance},
		{Name: "get", Usage: "<variable>", Help: "Show one of your variables", Parse: parseGet},
		{Name: "set", Usage: "<variable> = <value>", Help: "Set one of your variables", Parse: parseSet},
		{Name: "del", Usage: "<variable>", Help: "Delete one of your variables", Parse: parseDelete},
		{Name: "variables", Usage: "", Help: "List your variables in this room", Parse: parseList},
		{Name: "register", Usage: "<password>", Help: "Register an account (encrypted direct messages only)", Parse: parseRegister},
		{Name: "check", Usage: "<password>", Help: "Check your account password (encrypted direct messages only)", Parse: parseCheck},
		{Name: "unregister", Usage: "", Help: "Delete your account (encrypted direct messages only)", Parse: parseUnregister},
		{Name: "help", Usage: "[topic]", Help: "Show this help, or help for one command", Parse: parseHelp},
	}
}

func parseRoll(args string) (Command, error) {
	expr, err := dice.Parse(args)
	if err != nil {
		return nil, err
	}
	return RollCommand{Expr: expr}, nil
}

func parsePool(args string) (Command, error) {
	p, err := cofd.Parse(args)
	if err != nil {
		return nil, err
	}
	return PoolCommand{Pool: p}, nil
}

func parseChance(args string) (Command, error) {
	if err := lex.End(args); err != nil {
		return nil, err
	}
	return ChanceCommand{}, nil
}

func parseCthRoll(args string) (Command, error) {
	c, err := cthulhu.ParseCheck(args)
	if err != nil {
		return nil, err
	}
	return CthRollCommand{Check: c}, nil
}

func parseCthAdvance(args string) (Command, error) {
	a, err := cthulhu.ParseAdvancement(args)
	if err != nil {
		return nil, err
	}
	return CthAdvanceCommand{Advancement: a}, nil
}

// parseName consumes one variable name and returns the remainder.
func parseName(s string) (string, string, error) {
	name, rest, err := lex.Word(s)
	if err != nil {
		return "", s, lex.Errorf(lex.Whitespace(s), "expected a variable name")
	}
	return name, rest, nil
}

func parseGet(args string) (Command, error) {
	name, rest, err := parseName(args)
	if err != nil {
		return nil, err
	}
	if err := lex.End(rest); err != nil {
		return nil, err
	}
	return GetVariableCommand{Variable: name}, nil
}

func parseSet(args string) (Command, error) {
	name, rest, err := parseName(args)
	if err != nil {
		return nil, err
	}
	if after, ok := lex.Tag(rest, "="); ok {
		rest = after
	}
	value, rest, err := parseInt32(rest)
	if err != nil {
		return nil, err
	}
	if err := lex.End(rest); err != nil {
		return nil, err
	}
	return SetVariableCommand{Variable: name, Value: value}, nil
}

// parseInt32 consumes an optionally signed decimal that fits in an int32.
func parseInt32(s string) (int32, string, error) {
	sign, rest, _ := lex.SignPrefix(s)
	start := lex.Whitespace(s)
	n, rest, err := lex.Uint32(rest)
	if err != nil {
		return 0, s, err
	}
	if sign == lex.Minus {
		if n > uint32(math.MaxInt32)+1 {
			return 0, s, lex.Errorf(start, "value is too small (minimum %d)", math.MinInt32)
		}
		return int32(-int64(n)), rest, nil
	}
	if n > math.MaxInt32 {
		return 0, s, lex.Errorf(start, "value is too large (maximum %d)", math.MaxInt32)
	}
	return int32(n), rest, nil
}

func parseDelete(args string) (Command, error) {
	name, rest, err := parseName(args)
	if err != nil {
		return nil, err
	}
	if err := lex.End(rest); err != nil {
		return nil, err
	}
	return DeleteVariableCommand{Variable: name}, nil
}

func parseList(args string) (Command, error) {
	if err := lex.End(args); err != nil {
		return nil, err
	}
	return ListVariablesCommand{}, nil
}

// Secure commands never fail to parse, so that using one in the wrong room is
// always reported as such rather than as a syntax problem. The password is
// validated when the command runs.

func parseRegister(args string) (Command, error) {
	return RegisterCommand{Password: strings.TrimSpace(args)}, nil
}

func parseCheck(args string) (Command, error) {
	return CheckCommand{Password: strings.TrimSpace(args)}, nil
}

func parseUnregister(string) (Command, error) {
	return UnregisterCommand{}, nil
}

func parseHelp(args string) (Command, error) {
	if lex.Whitespace(args) == "" {
		return HelpCommand{}, nil
	}
	topic, rest, err := lex.Word(args)
	if err != nil {
		return nil, err
	}
	if err := lex.End(rest); err != nil {
		return nil, err
	}
	return HelpCommand{Topic: topic}, nil
}
