// Package command parses chat messages into bot commands and executes them.
package command

import (
	"fmt"

	"github.com/cory-johannsen/dicebot/internal/cofd"
	"github.com/cory-johannsen/dicebot/internal/cthulhu"
	"github.com/cory-johannsen/dicebot/internal/dice"
)

// Command is a parsed bot command. The implementations in this file are the
// complete set; code that switches over commands handles every one of them.
type Command interface {
	// Name is the canonical command word without the leading '!'.
	Name() string
	command()
}

// RollCommand rolls a dice-term expression.
type RollCommand struct {
	Expr dice.Expression
}

// PoolCommand rolls a Chronicles of Darkness dice pool.
type PoolCommand struct {
	Pool cofd.Pool
}

// ChanceCommand rolls a chance die.
type ChanceCommand struct{}

// CthRollCommand rolls a percentile skill check.
type CthRollCommand struct {
	Check cthulhu.Check
}

// CthAdvanceCommand rolls a skill advancement.
type CthAdvanceCommand struct {
	Advancement cthulhu.Advancement
}

// GetVariableCommand shows one variable.
type GetVariableCommand struct {
	Variable string
}

// SetVariableCommand stores a variable.
type SetVariableCommand struct {
	Variable string
	Value    int32
}

// DeleteVariableCommand removes a variable.
type DeleteVariableCommand struct {
	Variable string
}

// ListVariablesCommand lists every variable the user has in the room.
type ListVariablesCommand struct{}

// RegisterCommand creates or replaces the user's account.
type RegisterCommand struct {
	Password string
}

// CheckCommand verifies the user's password.
type CheckCommand struct {
	Password string
}

// UnregisterCommand deletes the user's account.
type UnregisterCommand struct{}

// HelpCommand shows usage for every command or one topic.
type HelpCommand struct {
	Topic string
}

func (RollCommand) Name() string           { return "roll" }
func (PoolCommand) Name() string           { return "pool" }
func (ChanceCommand) Name() string         { return "chance" }
func (CthRollCommand) Name() string        { return "cthroll" }
func (CthAdvanceCommand) Name() string     { return "cthadv" }
func (GetVariableCommand) Name() string    { return "get" }
func (SetVariableCommand) Name() string    { return "set" }
func (DeleteVariableCommand) Name() string { return "del" }
func (ListVariablesCommand) Name() string  { return "variables" }
func (RegisterCommand) Name() string       { return "register" }
func (CheckCommand) Name() string          { return "check" }
func (UnregisterCommand) Name() string     { return "unregister" }
func (HelpCommand) Name() string           { return "help" }

func (RollCommand) command()           {}
func (PoolCommand) command()           {}
func (ChanceCommand) command()         {}
func (CthRollCommand) command()        {}
func (CthAdvanceCommand) command()     {}
func (GetVariableCommand) command()    {}
func (SetVariableCommand) command()    {}
func (DeleteVariableCommand) command() {}
func (ListVariablesCommand) command()  {}
func (RegisterCommand) command()       {}
func (CheckCommand) command()          {}
func (UnregisterCommand) command()     {}
func (HelpCommand) command()           {}

// IsSecure reports whether cmd may only run in an encrypted direct room.
// Commands that carry or change a password are secure.
func IsSecure(cmd Command) bool {
	switch cmd.(type) {
	case RegisterCommand, CheckCommand, UnregisterCommand:
		return true
	case RollCommand, PoolCommand, ChanceCommand, CthRollCommand, CthAdvanceCommand,
		GetVariableCommand, SetVariableCommand, DeleteVariableCommand, ListVariablesCommand,
		HelpCommand:
		return false
	}
	panic(fmt.Sprintf("command: IsSecure called with unknown command type %T", cmd))
}
