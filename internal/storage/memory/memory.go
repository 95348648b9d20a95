// Package memory provides in-process variable and account stores for the CLI
// and tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/cory-johannsen/dicebot/internal/accounts"
	"github.com/cory-johannsen/dicebot/internal/variables"
)

type scope struct {
	roomID, userID string
}

// Store keeps variables and accounts in maps.
// All methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	vars     map[scope]map[string]int32
	accounts map[string]string // user id → password hash
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		vars:     make(map[scope]map[string]int32),
		accounts: make(map[string]string),
	}
}

// GetUserVariables returns a copy of every variable the user has in the room.
//
// Postcondition: the returned map is never nil and is not shared with the store.
func (s *Store) GetUserVariables(ctx context.Context, roomID, userID string) (map[string]int32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int32, len(s.vars[scope{roomID, userID}]))
	maps.Copy(out, s.vars[scope{roomID, userID}])
	return out, nil
}

// GetUserVariable returns one variable, or a *variables.NotFoundError.
func (s *Store) GetUserVariable(ctx context.Context, roomID, userID, name string) (int32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[scope{roomID, userID}][name]
	if !ok {
		return 0, &variables.NotFoundError{Name: name}
	}
	return v, nil
}

// SetUserVariable creates or replaces a variable.
func (s *Store) SetUserVariable(ctx context.Context, roomID, userID, name string, value int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scope{roomID, userID}
	if s.vars[key] == nil {
		s.vars[key] = make(map[string]int32)
	}
	s.vars[key][name] = value
	return nil
}

// DeleteUserVariable removes a variable, or returns a *variables.NotFoundError.
func (s *Store) DeleteUserVariable(ctx context.Context, roomID, userID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scope{roomID, userID}
	if _, ok := s.vars[key][name]; !ok {
		return &variables.NotFoundError{Name: name}
	}
	delete(s.vars[key], name)
	if len(s.vars[key]) == 0 {
		delete(s.vars, key)
	}
	return nil
}

// SetPasswordHash creates or replaces an account.
func (s *Store) SetPasswordHash(ctx context.Context, userID, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[userID] = hash
	return nil
}

// PasswordHash returns the account's hash, or accounts.ErrNotRegistered.
func (s *Store) PasswordHash(ctx context.Context, userID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.accounts[userID]
	if !ok {
		return "", accounts.ErrNotRegistered
	}
	return h, nil
}

// DeleteAccount removes an account, or returns accounts.ErrNotRegistered.
func (s *Store) DeleteAccount(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[userID]; !ok {
		return accounts.ErrNotRegistered
	}
	delete(s.accounts, userID)
	return nil
}

var (
	_ variables.Store = (*Store)(nil)
	_ accounts.Store  = (*Store)(nil)
)
