package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebot/internal/config"
)

var (
	// ErrInvalidUsername is returned for names that are empty, too long, or
	// contain characters other than ASCII letters, digits, '-' and '_'.
	ErrInvalidUsername = errors.New("usernames are 1 to 20 letters, digits, '-' or '_'")
	// ErrUsernameTaken is returned when the name is already connected.
	ErrUsernameTaken = errors.New("that username is already connected")
	// ErrNotConnected is returned for operations on an unknown member.
	ErrNotConnected = errors.New("not connected")
	// ErrUnknownRoom is returned when joining a room that does not exist.
	ErrUnknownRoom = errors.New("no such room")
	// ErrForbiddenRoom is returned when joining another user's direct room.
	ErrForbiddenRoom = errors.New("that room is private")
)

const maxUsernameLen = 20

// Hub tracks connected members, their rooms, and publishes every room
// message as an Event. All methods are safe for concurrent use.
type Hub struct {
	mu          sync.RWMutex
	rooms       map[string]Room
	order       []string
	defaultRoom string
	members     map[string]*Member         // username → member
	roomOf      map[string]string          // username → room id
	occupancy   map[string]map[string]bool // room id → set of usernames
	outboxSize  int

	events chan Event
	now    func() time.Time
	logger *zap.Logger
}

// NewHub creates a Hub over the given room catalogue.
//
// Precondition: rooms must be non-empty with unique ids; logger must be non-nil.
// Postcondition: Returns a Hub or an error when cfg.DefaultRoom is not in rooms.
func NewHub(rooms []Room, cfg config.ChatConfig, logger *zap.Logger) (*Hub, error) {
	h := &Hub{
		rooms:       make(map[string]Room, len(rooms)),
		defaultRoom: cfg.DefaultRoom,
		members:     make(map[string]*Member),
		roomOf:      make(map[string]string),
		occupancy:   make(map[string]map[string]bool),
		outboxSize:  cfg.OutboxSize,
		events:      make(chan Event, cfg.EventBuffer),
		now:         time.Now,
		logger:      logger,
	}
	for _, r := range rooms {
		h.rooms[r.ID] = r
		h.order = append(h.order, r.ID)
	}
	if _, ok := h.rooms[cfg.DefaultRoom]; !ok {
		return nil, fmt.Errorf("default room %q is not in the rooms catalogue", cfg.DefaultRoom)
	}
	return h, nil
}

// Events returns the channel every room message is published on.
func (h *Hub) Events() <-chan Event {
	return h.events
}

// Connect registers a member and places it in the default room.
//
// Postcondition: Returns the new Member and its room, or ErrInvalidUsername / ErrUsernameTaken.
func (h *Hub) Connect(username string, encrypted bool) (*Member, Room, error) {
	if !ValidUsername(username) {
		return nil, Room{}, ErrInvalidUsername
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.members[username]; exists {
		return nil, Room{}, ErrUsernameTaken
	}
	m := newMember(username, encrypted, h.outboxSize)
	h.members[username] = m
	h.enterLocked(username, h.defaultRoom)

	h.logger.Info("member connected",
		zap.String("username", username),
		zap.String("member_id", m.ID.String()),
		zap.Bool("encrypted", encrypted),
	)
	return m, h.rooms[h.defaultRoom], nil
}

// Disconnect removes a member and closes its outbox. Unknown names are ignored.
func (h *Hub) Disconnect(username string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.members[username]
	if !ok {
		return
	}
	h.leaveLocked(username)
	delete(h.members, username)
	m.close()

	h.logger.Info("member disconnected",
		zap.String("username", username),
		zap.String("member_id", m.ID.String()),
	)
}

// Join moves a member to roomID. A member may join any catalogue room and
// its own direct room.
//
// Postcondition: Returns the joined Room, or ErrNotConnected / ErrUnknownRoom / ErrForbiddenRoom.
func (h *Hub) Join(username, roomID string) (Room, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.members[username]; !ok {
		return Room{}, ErrNotConnected
	}
	room, err := h.lookupLocked(roomID)
	if err != nil {
		return Room{}, err
	}
	if room.Direct && room.ID != DirectRoomID(username) {
		return Room{}, ErrForbiddenRoom
	}
	h.leaveLocked(username)
	h.enterLocked(username, room.ID)
	return room, nil
}

// JoinDirect moves a member to its direct room.
func (h *Hub) JoinDirect(username string) (Room, error) {
	return h.Join(username, DirectRoomID(username))
}

// Rooms returns the catalogue rooms in catalogue order.
func (h *Hub) Rooms() []Room {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Room, len(h.order))
	for i, id := range h.order {
		out[i] = h.rooms[id]
	}
	return out
}

// Who returns the sorted usernames present in roomID.
func (h *Hub) Who(roomID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.occupancy[roomID]))
	for name := range h.occupancy[roomID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RoomOf returns the room a member is in.
func (h *Hub) RoomOf(username string) (Room, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	id, ok := h.roomOf[username]
	if !ok {
		return Room{}, ErrNotConnected
	}
	return h.lookupLocked(id)
}

// Say relays text from a member to the other members of its room and
// publishes it as an Event. Publishing blocks while the event buffer is full.
//
// Postcondition: Returns the published Event, ErrNotConnected, or ctx.Err().
func (h *Hub) Say(ctx context.Context, username, text string) (Event, error) {
	h.mu.RLock()
	m, ok := h.members[username]
	if !ok {
		h.mu.RUnlock()
		return Event{}, ErrNotConnected
	}
	room, err := h.lookupLocked(h.roomOf[username])
	if err != nil {
		h.mu.RUnlock()
		return Event{}, err
	}
	recipients := h.membersInLocked(room.ID, username)
	h.mu.RUnlock()

	h.deliver(recipients, Delivery{RoomID: room.ID, From: username, Text: text})

	ev := Event{
		ID:       uuid.New(),
		RoomID:   room.ID,
		UserID:   username,
		Username: username,
		Text:     text,
		Secure:   room.Direct && m.Encrypted,
		Time:     h.now(),
	}
	select {
	case h.events <- ev:
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Post delivers a message from a non-member sender, such as the bot, to
// everyone in roomID.
//
// Postcondition: Returns ErrUnknownRoom when roomID does not exist; delivery
// failures to individual members are logged and skipped.
func (h *Hub) Post(roomID, from, plain, html string) error {
	h.mu.RLock()
	if _, err := h.lookupLocked(roomID); err != nil {
		h.mu.RUnlock()
		return err
	}
	recipients := h.membersInLocked(roomID, "")
	h.mu.RUnlock()

	h.deliver(recipients, Delivery{RoomID: roomID, From: from, Text: plain, HTML: html})
	return nil
}

func (h *Hub) deliver(recipients []*Member, d Delivery) {
	for _, m := range recipients {
		if err := m.Push(d); err != nil {
			h.logger.Warn("dropping delivery",
				zap.String("username", m.Username),
				zap.String("room", d.RoomID),
				zap.Error(err),
			)
		}
	}
}

// lookupLocked resolves catalogue rooms and direct rooms.
func (h *Hub) lookupLocked(roomID string) (Room, error) {
	if r, ok := h.rooms[roomID]; ok {
		return r, nil
	}
	if name, ok := strings.CutPrefix(roomID, DirectPrefix); ok && ValidUsername(name) {
		return DirectRoom(name), nil
	}
	return Room{}, ErrUnknownRoom
}

func (h *Hub) membersInLocked(roomID, except string) []*Member {
	out := make([]*Member, 0, len(h.occupancy[roomID]))
	for name := range h.occupancy[roomID] {
		if name == except {
			continue
		}
		if m, ok := h.members[name]; ok {
			out = append(out, m)
		}
	}
	return out
}

func (h *Hub) enterLocked(username, roomID string) {
	h.roomOf[username] = roomID
	if h.occupancy[roomID] == nil {
		h.occupancy[roomID] = make(map[string]bool)
	}
	h.occupancy[roomID][username] = true
}

func (h *Hub) leaveLocked(username string) {
	roomID, ok := h.roomOf[username]
	if !ok {
		return
	}
	delete(h.roomOf, username)
	if set, ok := h.occupancy[roomID]; ok {
		delete(set, username)
		if len(set) == 0 {
			delete(h.occupancy, roomID)
		}
	}
}

// ValidUsername reports whether name may be used to connect.
func ValidUsername(name string) bool {
	if name == "" || len(name) > maxUsernameLen {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
