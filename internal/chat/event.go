package chat

import (
	"time"

	"github.com/google/uuid"
)

// Event is a room message published to listeners such as the bot.
type Event struct {
	ID       uuid.UUID
	RoomID   string
	UserID   string
	Username string
	Text     string
	// Secure is true when the room is direct and the sender's connection is encrypted.
	Secure bool
	Time   time.Time
}
