package command

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebot/internal/accounts"
	"github.com/cory-johannsen/dicebot/internal/cofd"
	"github.com/cory-johannsen/dicebot/internal/cthulhu"
	"github.com/cory-johannsen/dicebot/internal/dice"
	"github.com/cory-johannsen/dicebot/internal/dice/lex"
	"github.com/cory-johannsen/dicebot/internal/observability"
	"github.com/cory-johannsen/dicebot/internal/render"
	"github.com/cory-johannsen/dicebot/internal/variables"
)

// ErrInsecureContext is returned when a secure command is used outside an
// encrypted direct room.
var ErrInsecureContext = errors.New("this command can only be used in an encrypted direct message")

// logTextLimit is how many runes of a failed command are logged.
const logTextLimit = 30

// Message is one incoming chat message.
type Message struct {
	RoomID   string
	UserID   string
	Username string
	Text     string
	// Secure is true when the room is encrypted and direct.
	Secure bool
}

// Outcome is the result of running one command: a reply on success, or a
// failure reason rendered as a reply together with the cause.
type Outcome struct {
	Message render.Message
	// Err is the cause of a failure, or nil on success.
	Err error
}

// Failed reports whether the command failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Dispatcher parses, authorizes, and executes commands.
type Dispatcher struct {
	registry *Registry
	vars     variables.Store
	accounts *accounts.Service
	rollers  dice.RollerFactory
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher. Each command gets a fresh roller from rollers.
//
// Precondition: every argument must be non-nil.
func NewDispatcher(registry *Registry, vars variables.Store, accts accounts.Store, rollers dice.RollerFactory, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		vars:     vars,
		accounts: accounts.NewService(accts),
		rollers:  rollers,
		logger:   logger,
	}
}

// Dispatch handles one chat message.
//
// Postcondition: handled is false, and nothing is logged or returned, when the
// message is not a bot command. Otherwise the Outcome holds the reply.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (out Outcome, handled bool) {
	cmd, err := d.registry.Parse(msg.Text)
	if errors.Is(err, ErrNotCommand) {
		return Outcome{}, false
	}
	if err == nil {
		if IsSecure(cmd) && !msg.Secure {
			err = ErrInsecureContext
		} else {
			var reply render.Message
			reply, err = d.Execute(ctx, cmd, msg)
			if err == nil {
				return Outcome{Message: reply}, true
			}
		}
	}
	return d.fail(msg, err), true
}

func (d *Dispatcher) fail(msg Message, err error) Outcome {
	reason, internal := failureReason(err)
	fields := []zap.Field{
		zap.String("room", msg.RoomID),
		zap.String("user", msg.UserID),
		observability.TruncatedString("command", msg.Text, logTextLimit),
		zap.Error(err),
	}
	if internal {
		d.logger.Error("command failed", fields...)
	} else {
		d.logger.Info("command rejected", fields...)
	}
	return Outcome{
		Message: render.Lines(render.Line{Label: "Error", Value: reason}),
		Err:     err,
	}
}

// failureReason maps an error to the text shown to the user. internal is true
// when the cause must not be shown.
func failureReason(err error) (reason string, internal bool) {
	var (
		lexErr   *lex.Error
		notFound *variables.NotFoundError
		topicErr *UnknownTopicError
	)
	switch {
	case errors.As(err, &lexErr):
		return lexErr.Error(), false
	case errors.As(err, &notFound):
		return notFound.Error(), false
	case errors.As(err, &topicErr):
		return topicErr.Error(), false
	case errors.Is(err, ErrInsecureContext):
		return ErrInsecureContext.Error(), false
	case errors.Is(err, accounts.ErrNotRegistered):
		return "you are not registered", false
	case errors.Is(err, accounts.ErrInvalidCredentials):
		return "incorrect password", false
	case errors.Is(err, accounts.ErrInvalidPassword):
		return accounts.ErrInvalidPassword.Error(), false
	case errors.Is(err, context.Canceled):
		return "command cancelled", false
	case errors.Is(err, context.DeadlineExceeded):
		return "command timed out", true
	}
	return "an internal error occurred", true
}

// Execute runs an already-authorized command. Variables are resolved in full
// before any dice are rolled.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command, msg Message) (render.Message, error) {
	switch c := cmd.(type) {
	case RollCommand:
		vals, err := variables.Resolve(ctx, d.vars, msg.RoomID, msg.UserID, c.Expr.VariableNames())
		if err != nil {
			return render.Message{}, err
		}
		bound, err := c.Expr.Bind(vals)
		if err != nil {
			return render.Message{}, err
		}
		return dice.Render(c.Expr, dice.Roll(bound, d.rollers())), nil

	case PoolCommand:
		return cofd.Render(cofd.Roll(c.Pool, d.rollers())), nil

	case ChanceCommand:
		return cofd.Render(cofd.Roll(cofd.ChancePool(), d.rollers())), nil

	case CthRollCommand:
		vals, err := variables.Resolve(ctx, d.vars, msg.RoomID, msg.UserID, c.Check.Target.Names())
		if err != nil {
			return render.Message{}, err
		}
		target := c.Check.Target.Value(vals)
		return cthulhu.RollCheck(c.Check, target, d.rollers()).Render(), nil

	case CthAdvanceCommand:
		return d.advance(ctx, c, msg)

	case GetVariableCommand:
		v, err := d.vars.GetUserVariable(ctx, msg.RoomID, msg.UserID, c.Variable)
		if err != nil {
			return render.Message{}, err
		}
		return render.Text(fmt.Sprintf("Variable %s = %d", c.Variable, v)), nil

	case SetVariableCommand:
		if err := d.vars.SetUserVariable(ctx, msg.RoomID, msg.UserID, c.Variable, c.Value); err != nil {
			return render.Message{}, err
		}
		return render.Text(fmt.Sprintf("Set variable %s to %d", c.Variable, c.Value)), nil

	case DeleteVariableCommand:
		if err := d.vars.DeleteUserVariable(ctx, msg.RoomID, msg.UserID, c.Variable); err != nil {
			return render.Message{}, err
		}
		return render.Text(fmt.Sprintf("Deleted variable %s", c.Variable)), nil

	case ListVariablesCommand:
		return d.listVariables(ctx, msg)

	case RegisterCommand:
		if err := d.accounts.Register(ctx, msg.UserID, c.Password); err != nil {
			return render.Message{}, err
		}
		return render.Text("Your account is registered."), nil

	case CheckCommand:
		if err := d.accounts.Check(ctx, msg.UserID, c.Password); err != nil {
			return render.Message{}, err
		}
		return render.Text("Your password is correct."), nil

	case UnregisterCommand:
		if err := d.accounts.Unregister(ctx, msg.UserID); err != nil {
			return render.Message{}, err
		}
		return render.Text("Your account has been removed."), nil

	case HelpCommand:
		return d.registry.Help(c.Topic)
	}
	panic(fmt.Sprintf("command: Execute called with unknown command type %T", cmd))
}

// advance rolls an advancement and, when the skill came from a variable and
// improved, stores the new value.
func (d *Dispatcher) advance(ctx context.Context, c CthAdvanceCommand, msg Message) (render.Message, error) {
	existing := c.Advancement.Existing
	vals, err := variables.Resolve(ctx, d.vars, msg.RoomID, msg.UserID, existing.Names())
	if err != nil {
		return render.Message{}, err
	}
	roll := cthulhu.RollAdvancement(c.Advancement, existing.Value(vals), d.rollers())
	reply := roll.Render()
	if !roll.Successful || !existing.IsVariable() {
		return reply, nil
	}

	newSkill := int32(min(roll.NewSkill, math.MaxInt32))
	if err := d.vars.SetUserVariable(ctx, msg.RoomID, msg.UserID, existing.Name, newSkill); err != nil {
		return render.Message{}, fmt.Errorf("saving advanced skill: %w", err)
	}
	return reply.Append(render.Lines(render.Line{
		Label: "Updated",
		Value: fmt.Sprintf("%s = %d", existing.Name, newSkill),
	})), nil
}

func (d *Dispatcher) listVariables(ctx context.Context, msg Message) (render.Message, error) {
	all, err := d.vars.GetUserVariables(ctx, msg.RoomID, msg.UserID)
	if err != nil {
		return render.Message{}, err
	}
	if len(all) == 0 {
		return render.Text("No variables set"), nil
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("%s = %d", name, all[name])
	}
	return render.Text(strings.Join(lines, "\n")), nil
}
