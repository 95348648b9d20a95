// Package variables resolves named per-user, per-room integer variables
// referenced by dice expressions.
//
// Variables are owned by a storage collaborator keyed by (room, user, name).
// The dice engine borrows resolved values for the duration of one command and
// never caches them.
package variables

import (
	"context"
	"errors"
	"fmt"

	"github.com/cory-johannsen/dicebot/internal/dice/lex"
)

// ErrNotFound is returned when a variable has no stored value.
var ErrNotFound = errors.New("variable not found")

// NotFoundError names the variable that could not be found.
type NotFoundError struct {
	Name string
}

// Error implements error.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("variable '%s' not found", e.Name)
}

// Unwrap allows errors.Is(err, ErrNotFound).
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Reader fetches the full variable snapshot for a user in a room.
type Reader interface {
	// GetUserVariables returns every variable the user has set in the room.
	// An empty map (not an error) is returned when none are set.
	GetUserVariables(ctx context.Context, roomID, userID string) (map[string]int32, error)
}

// Store is the read/write contract of the storage collaborator.
type Store interface {
	Reader
	// GetUserVariable returns a single variable or a *NotFoundError.
	GetUserVariable(ctx context.Context, roomID, userID, name string) (int32, error)
	// SetUserVariable creates or replaces a variable.
	SetUserVariable(ctx context.Context, roomID, userID, name string, value int32) error
	// DeleteUserVariable removes a variable or returns a *NotFoundError.
	DeleteUserVariable(ctx context.Context, roomID, userID, name string) error
}

// Values is a resolved set of variables for one command.
type Values map[string]int32

// ValidName reports whether name is a legal variable name: one or more ASCII letters.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !lex.IsLetter(name[i]) {
			return false
		}
	}
	return true
}

// Resolve fetches the user's variables in one call and resolves every
// requested name against the snapshot.
//
// Precondition: r must be non-nil.
// Postcondition: either every name is present in the returned Values, or a
// non-nil error is returned and no Values are. A missing name yields a
// *NotFoundError for the first missing name in request order. When names is
// empty no fetch is made.
func Resolve(ctx context.Context, r Reader, roomID, userID string, names []string) (Values, error) {
	if len(names) == 0 {
		return Values{}, nil
	}

	all, err := r.GetUserVariables(ctx, roomID, userID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("fetching variables: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vals := make(Values, len(names))
	for _, name := range names {
		v, ok := all[name]
		if !ok {
			return nil, &NotFoundError{Name: name}
		}
		vals[name] = v
	}
	return vals, nil
}
