package chat

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrMemberClosed is returned when delivering to a disconnected member.
	ErrMemberClosed = errors.New("member disconnected")
	// ErrOutboxFull is returned when a member is not reading fast enough.
	ErrOutboxFull = errors.New("member outbox full")
)

// Delivery is one message shown to a member.
type Delivery struct {
	RoomID string
	From   string
	// Text is the plain-text body and may span several lines.
	Text string
	// HTML is the rich rendering, when the sender provided one.
	HTML string
}

// Member is a connected user. Deliveries are queued on a bounded outbox
// drained by the member's connection.
type Member struct {
	// ID identifies this connection.
	ID uuid.UUID
	// Username is unique among connected members.
	Username string
	// Encrypted is true when the connection is served over TLS.
	Encrypted bool

	outbox chan Delivery
	mu     sync.Mutex
	closed bool
}

func newMember(username string, encrypted bool, outboxSize int) *Member {
	if outboxSize <= 0 {
		outboxSize = 64
	}
	return &Member{
		ID:        uuid.New(),
		Username:  username,
		Encrypted: encrypted,
		outbox:    make(chan Delivery, outboxSize),
	}
}

// Push queues d without blocking.
//
// Postcondition: d is queued, or ErrMemberClosed / ErrOutboxFull is returned.
func (m *Member) Push(d Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrMemberClosed
	}
	select {
	case m.outbox <- d:
		return nil
	default:
		return ErrOutboxFull
	}
}

// Outbox returns the channel of queued deliveries. It is closed when the
// member disconnects.
func (m *Member) Outbox() <-chan Delivery {
	return m.outbox
}

func (m *Member) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.outbox)
	}
}
