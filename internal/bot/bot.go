// Package bot answers dice commands posted in chat rooms.
package bot

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/dicebot/internal/chat"
	"github.com/cory-johannsen/dicebot/internal/command"
	"github.com/cory-johannsen/dicebot/internal/config"
	"github.com/cory-johannsen/dicebot/internal/render"
)

// Replier delivers a reply to every member of a room.
type Replier interface {
	Post(roomID, from, plain, html string) error
}

// Dispatcher runs one chat message as a command.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg command.Message) (command.Outcome, bool)
}

var _ Dispatcher = (*command.Dispatcher)(nil)
var _ Replier = (*chat.Hub)(nil)

// Bot reads chat events and replies to the commands among them.
type Bot struct {
	dispatcher Dispatcher
	replier    Replier
	cfg        config.BotConfig
	logger     *zap.Logger
	now        func() time.Time
}

// runState is the mutable state of one Run call.
type runState struct {
	// cutoff is the oldest event time that is still answered.
	cutoff time.Time
	// skipLogged is set once the first old-event skip has been logged.
	skipLogged bool
	skipped    int
}

// New creates a Bot.
//
// Precondition: dispatcher, replier, and logger must be non-nil.
func New(dispatcher Dispatcher, replier Replier, cfg config.BotConfig, logger *zap.Logger) *Bot {
	return &Bot{
		dispatcher: dispatcher,
		replier:    replier,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Run handles events until ctx is cancelled or events is closed. Each event
// is handled in its own goroutine, at most cfg.MaxConcurrent at once. Events
// sent earlier than the old-message window before Run started are skipped.
//
// Postcondition: every started handler has returned. Returns nil.
func (b *Bot) Run(ctx context.Context, events <-chan chat.Event) error {
	state := &runState{cutoff: b.now().Add(-b.cfg.OldMessageWindow)}
	b.logger.Info("bot started",
		zap.String("display_name", b.cfg.DisplayName),
		zap.Time("cutoff", state.cutoff),
	)

	var g errgroup.Group
	if b.cfg.MaxConcurrent > 0 {
		g.SetLimit(b.cfg.MaxConcurrent)
	}
	defer func() {
		_ = g.Wait()
		b.logger.Info("bot stopped", zap.Int("skipped_old", state.skipped))
	}()

	for {
		var ev chat.Event
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case ev, ok = <-events:
			if !ok {
				return nil
			}
		}

		if b.skip(state, ev) {
			continue
		}
		g.Go(func() error {
			b.Handle(ctx, ev)
			return nil
		})
	}
}

// skip reports whether ev predates the cutoff, logging the first skip only.
func (b *Bot) skip(state *runState, ev chat.Event) bool {
	if !ev.Time.Before(state.cutoff) {
		return false
	}
	state.skipped++
	if !state.skipLogged {
		state.skipLogged = true
		b.logger.Info("skipping messages sent before startup",
			zap.Time("cutoff", state.cutoff),
			zap.Time("first_skipped", ev.Time),
		)
	}
	return true
}

// Handle runs one event as a command and posts the reply. Events that are not
// commands are ignored. It reports whether a reply was posted.
func (b *Bot) Handle(ctx context.Context, ev chat.Event) bool {
	if b.cfg.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.CommandTimeout)
		defer cancel()
	}

	out, handled := b.dispatcher.Dispatch(ctx, command.Message{
		RoomID:   ev.RoomID,
		UserID:   ev.UserID,
		Username: ev.Username,
		Text:     ev.Text,
		Secure:   ev.Secure,
	})
	if !handled {
		return false
	}

	reply := Reply(ev.Username, out.Message)
	if err := b.replier.Post(ev.RoomID, b.cfg.DisplayName, reply.Plain, reply.HTML); err != nil {
		b.logger.Warn("posting reply",
			zap.String("event_id", ev.ID.String()),
			zap.String("room", ev.RoomID),
			zap.Error(err),
		)
		return false
	}
	return true
}

// Reply prefixes a command result with the name of the user it answers.
func Reply(username string, result render.Message) render.Message {
	return render.Message{
		Plain: username + "\n" + result.Plain,
		HTML:  "<p><strong>" + render.Escape(username) + "</strong></p>" + result.HTML,
	}
}
