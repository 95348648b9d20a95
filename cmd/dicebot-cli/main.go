// Package main provides a command-line front end to the dice bot. The
// arguments are joined into one command and run against a throwaway
// in-memory store, e.g.
//
//	dicebot-cli roll 4d6k3 + 2
//	dicebot-cli '!pool 8 n'
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebot/internal/command"
	"github.com/cory-johannsen/dicebot/internal/dice"
	"github.com/cory-johannsen/dicebot/internal/observability"
	"github.com/cory-johannsen/dicebot/internal/storage/memory"
)

// errCommandFailed signals a failure whose reason was already printed.
var errCommandFailed = errors.New("command failed")

type options struct {
	user    string
	room    string
	seed    uint64
	seeded  bool
	verbose bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errCommandFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "dicebot-cli <command> [args...]",
		Short: "Run one dice bot command locally",
		Long: `Run one dice bot command and print the result.

The arguments are joined with spaces; a leading '!' is added when missing.
Variables live only for the duration of the process, and secure commands
(register, check, unregister) are refused.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seeded = cmd.Flags().Changed("seed")
			return run(cmd.Context(), opts, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&opts.user, "user", "cli", "user id variables are stored under")
	cmd.Flags().StringVar(&opts.room, "room", "cli", "room id variables are stored under")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for reproducible rolls")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every die rolled to stderr")
	return cmd
}

func run(ctx context.Context, opts options, args []string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := observability.NewCLILogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	text := strings.TrimSpace(strings.Join(args, " "))
	if !strings.HasPrefix(text, command.Prefix) {
		text = command.Prefix + text
	}

	store := memory.NewStore()
	dispatcher := command.NewDispatcher(command.DefaultRegistry(), store, store,
		dice.LoggedFactory(rollers(opts), logger.Named("dice")), logger)

	out, handled := dispatcher.Dispatch(ctx, command.Message{
		RoomID:   opts.room,
		UserID:   opts.user,
		Username: opts.user,
		Text:     text,
	})
	if !handled {
		fmt.Fprintf(stderr, "Unknown command %q. Try: dicebot-cli help\n", text)
		return errCommandFailed
	}
	if out.Failed() {
		fmt.Fprintln(stderr, out.Message.Plain)
		logger.Debug("command failed", zap.Error(out.Err))
		return errCommandFailed
	}
	fmt.Fprintln(stdout, out.Message.Plain)
	return nil
}

// rollers returns seeded rollers when a seed was given, and fresh
// per-command rollers otherwise.
func rollers(opts options) dice.RollerFactory {
	if !opts.seeded {
		return dice.NewMessageRoller
	}
	return func() dice.Roller {
		return dice.NewRoller(dice.NewSeededSource(opts.seed))
	}
}
