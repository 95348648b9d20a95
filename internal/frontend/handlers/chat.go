// Package handlers provides Telnet session handling for the chat.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebot/internal/chat"
	"github.com/cory-johannsen/dicebot/internal/frontend/telnet"
)

const welcomeBanner = "\r\n" + telnet.Bold + telnet.BrightCyan + "  dicebot chat" + telnet.Reset + "\r\n\r\n" +
	"  Pick a username to join. Type " + telnet.Green + "/help" + telnet.Reset + " once inside.\r\n" +
	"  Talk to the bot with commands like " + telnet.Green + "!roll 2d6+3" + telnet.Reset + ".\r\n"

// ChatHandler implements telnet.SessionHandler: it signs a user into the
// hub and relays lines between the connection and the user's room.
type ChatHandler struct {
	hub    *chat.Hub
	logger *zap.Logger
}

// NewChatHandler creates a ChatHandler backed by hub.
//
// Precondition: hub and logger must be non-nil.
func NewChatHandler(hub *chat.Hub, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{hub: hub, logger: logger}
}

// HandleSession implements telnet.SessionHandler.
//
// Postcondition: the member is disconnected from the hub and its writer has
// exited. Returns nil on /quit, or the error that ended the session.
func (h *ChatHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	addr := conn.RemoteAddr().String()

	if err := conn.Write([]byte(welcomeBanner)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	member, room, err := h.signIn(ctx, conn)
	if err != nil {
		return err
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for d := range member.Outbox() {
			if err := conn.WriteLine(RenderDelivery(d)); err != nil {
				h.logger.Debug("writing delivery", zap.String("username", member.Username), zap.Error(err))
			}
		}
	}()
	defer func() {
		h.hub.Disconnect(member.Username)
		<-writerDone
		h.logger.Info("chat session ended",
			zap.String("remote_addr", addr),
			zap.String("username", member.Username),
			zap.Duration("session_duration", time.Since(start)),
		)
	}()

	_ = conn.WriteLine(RenderRoom(room, h.hub.Who(room.ID)))

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		line, err := conn.ReadLine()
		if errors.Is(err, telnet.ErrLineTooLong) {
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Message too long; the limit is %d bytes.", telnet.MaxLineLength))
			continue
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			if _, err := h.hub.Say(ctx, member.Username, line); err != nil {
				return fmt.Errorf("publishing message: %w", err)
			}
			continue
		}

		quit, err := h.handleSlash(conn, member, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// signIn prompts until a free, valid username is entered.
func (h *ChatHandler) signIn(ctx context.Context, conn *telnet.Conn) (*chat.Member, chat.Room, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, chat.Room{}, err
		}
		if err := conn.WritePrompt("Username: "); err != nil {
			return nil, chat.Room{}, fmt.Errorf("writing prompt: %w", err)
		}
		name, err := conn.ReadLine()
		if err != nil {
			return nil, chat.Room{}, fmt.Errorf("reading username: %w", err)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		member, room, err := h.hub.Connect(name, conn.Encrypted())
		switch {
		case errors.Is(err, chat.ErrInvalidUsername), errors.Is(err, chat.ErrUsernameTaken):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, capitalize(err.Error())+"."))
			continue
		case err != nil:
			return nil, chat.Room{}, fmt.Errorf("connecting %s: %w", name, err)
		}
		_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Welcome, %s!", name))
		return member, room, nil
	}
}

// handleSlash runs a /command. quit is true when the session should end.
func (h *ChatHandler) handleSlash(conn *telnet.Conn, member *chat.Member, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/quit", "/exit":
		_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
		return true, nil

	case "/join":
		if len(args) != 1 {
			return false, conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: /join <room>"))
		}
		h.join(conn, member, args[0])

	case "/dm":
		h.join(conn, member, chat.DirectRoomID(member.Username))

	case "/rooms":
		return false, conn.WriteLine(RenderRoomList(h.hub.Rooms()))

	case "/who":
		room, err := h.hub.RoomOf(member.Username)
		if err != nil {
			return false, fmt.Errorf("looking up room: %w", err)
		}
		return false, conn.WriteLine(telnet.Colorf(telnet.Green, "Here: %s", strings.Join(h.hub.Who(room.ID), ", ")))

	case "/help":
		h.showHelp(conn)

	default:
		return false, conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false, nil
}

func (h *ChatHandler) join(conn *telnet.Conn, member *chat.Member, roomID string) {
	room, err := h.hub.Join(member.Username, roomID)
	if err != nil {
		_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Cannot join %s: %s.", roomID, err))
		return
	}
	h.logger.Debug("member joined room",
		zap.String("username", member.Username),
		zap.String("room", room.ID),
	)
	_ = conn.WriteLine(RenderRoom(room, h.hub.Who(room.ID)))
}

func (h *ChatHandler) showHelp(conn *telnet.Conn) {
	help := telnet.Colorize(telnet.BrightWhite, "Available commands:") + "\r\n" +
		telnet.Colorize(telnet.Green, "  /join <room>") + "  Move to another room\r\n" +
		telnet.Colorize(telnet.Green, "  /dm") + "           Move to your private room with the bot\r\n" +
		telnet.Colorize(telnet.Green, "  /rooms") + "        List rooms\r\n" +
		telnet.Colorize(telnet.Green, "  /who") + "          List who is in your room\r\n" +
		telnet.Colorize(telnet.Green, "  /quit") + "         Disconnect\r\n" +
		"Anything else is said to your room. Bot commands start with '!'; try !help.\r\n"
	_ = conn.Write([]byte(help))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
