// Package accounts manages password-protected bot accounts. Every operation
// here handles a plaintext password, so the commands that reach it are only
// executed in encrypted direct rooms.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrNotRegistered is returned when a user has no account.
var ErrNotRegistered = errors.New("not registered")

// ErrInvalidCredentials is returned when a password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidPassword is returned for an empty or over-long password.
var ErrInvalidPassword = errors.New("password must be between 1 and 72 bytes")

// maxPasswordLen is the longest input bcrypt accepts.
const maxPasswordLen = 72

// Store persists password hashes keyed by user id.
type Store interface {
	// SetPasswordHash creates or replaces the user's password hash.
	SetPasswordHash(ctx context.Context, userID, hash string) error
	// PasswordHash returns the stored hash, or ErrNotRegistered.
	PasswordHash(ctx context.Context, userID string) (string, error)
	// DeleteAccount removes the account, or returns ErrNotRegistered.
	DeleteAccount(ctx context.Context, userID string) error
}

// Service registers and verifies accounts.
type Service struct {
	store Store
}

// NewService creates a Service backed by store.
//
// Precondition: store must be non-nil.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register stores a hash of password for userID, replacing any previous one.
//
// Postcondition: returns ErrInvalidPassword for an empty or over-long password.
func (s *Service) Register(ctx context.Context, userID, password string) error {
	if password == "" || len(password) > maxPasswordLen {
		return ErrInvalidPassword
	}
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.store.SetPasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("storing account: %w", err)
	}
	return nil
}

// Check verifies password against the stored hash for userID.
//
// Postcondition: returns nil on a match, ErrNotRegistered when there is no
// account, or ErrInvalidCredentials on a mismatch.
func (s *Service) Check(ctx context.Context, userID, password string) error {
	hash, err := s.store.PasswordHash(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotRegistered) {
			return err
		}
		return fmt.Errorf("loading account: %w", err)
	}
	if !CheckPassword(password, hash) {
		return ErrInvalidCredentials
	}
	return nil
}

// Unregister deletes the account for userID.
func (s *Service) Unregister(ctx context.Context, userID string) error {
	if err := s.store.DeleteAccount(ctx, userID); err != nil {
		if errors.Is(err, ErrNotRegistered) {
			return err
		}
		return fmt.Errorf("deleting account: %w", err)
	}
	return nil
}

// HashPassword creates a bcrypt hash of the given password.
//
// Precondition: password must be non-empty.
// Postcondition: Returns a bcrypt hash string.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
