// Package chat provides the rooms, members, and message events of the
// line-based chat the bot listens to.
package chat

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DirectPrefix prefixes the id of every direct room.
const DirectPrefix = "dm:"

// Room is a place members talk in.
type Room struct {
	ID    string
	Name  string
	Topic string
	// Direct is true for a user's private room with the bot.
	Direct bool
}

// DirectRoomID returns the id of username's direct room.
func DirectRoomID(username string) string {
	return DirectPrefix + username
}

// DirectRoom returns username's direct room.
func DirectRoom(username string) Room {
	return Room{
		ID:     DirectRoomID(username),
		Name:   username + " (direct)",
		Topic:  "Private room with the bot",
		Direct: true,
	}
}

// yamlRoomsFile is the top-level YAML structure for the rooms catalogue.
type yamlRoomsFile struct {
	Rooms []yamlRoom `yaml:"rooms"`
}

type yamlRoom struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Topic string `yaml:"topic"`
}

// LoadRoomsFromFile reads and validates a rooms catalogue.
//
// Precondition: path must point to a YAML rooms file.
// Postcondition: Returns at least one validated Room or a non-nil error.
func LoadRoomsFromFile(path string) ([]Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rooms file %s: %w", path, err)
	}
	return LoadRoomsFromBytes(data)
}

// LoadRoomsFromBytes parses and validates a rooms catalogue from YAML bytes.
//
// Postcondition: Returns at least one validated Room, in file order, or a non-nil error.
func LoadRoomsFromBytes(data []byte) ([]Room, error) {
	var file yamlRoomsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing rooms YAML: %w", err)
	}
	if len(file.Rooms) == 0 {
		return nil, errors.New("rooms file defines no rooms")
	}

	rooms := make([]Room, 0, len(file.Rooms))
	seen := make(map[string]bool, len(file.Rooms))
	var errs []error
	for i, yr := range file.Rooms {
		if err := validRoomID(yr.ID); err != nil {
			errs = append(errs, fmt.Errorf("room %d: %w", i, err))
			continue
		}
		if seen[yr.ID] {
			errs = append(errs, fmt.Errorf("room %d: duplicate id %q", i, yr.ID))
			continue
		}
		seen[yr.ID] = true
		name := yr.Name
		if name == "" {
			name = yr.ID
		}
		rooms = append(rooms, Room{ID: yr.ID, Name: name, Topic: yr.Topic})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rooms, nil
}

// validRoomID accepts lowercase letters, digits, '-' and '_'.
func validRoomID(id string) error {
	if id == "" {
		return errors.New("id must not be empty")
	}
	if strings.HasPrefix(id, DirectPrefix) {
		return fmt.Errorf("id %q uses the reserved prefix %q", id, DirectPrefix)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("id %q contains invalid character %q", id, r)
		}
	}
	return nil
}
