// Package boltstore persists variables and accounts in an embedded bbolt file.
package boltstore

import (
	"context"
	"fmt"

	bbolt "go.etcd.io/bbolt"

	"github.com/cory-johannsen/dicebot/internal/accounts"
	"github.com/cory-johannsen/dicebot/internal/variables"
)

// Store wraps a bbolt database. bbolt serializes writers internally, so all
// methods are safe for concurrent use.
type Store struct {
	bolt *bbolt.DB
}

// Open opens or creates a bbolt database file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketVariables, bucketAccounts} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: create buckets: %w", err)
	}
	return &Store{bolt: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.bolt.Close()
}

// Path returns the filesystem path of the underlying bbolt database.
func (s *Store) Path() string {
	return s.bolt.Path()
}

// GetUserVariables scans every key under the (room, user) prefix.
func (s *Store) GetUserVariables(ctx context.Context, roomID, userID string) (map[string]int32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkIDs(roomID, userID); err != nil {
		return nil, err
	}
	prefix := scopePrefix(roomID, userID)
	out := make(map[string]int32)
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketVariables).Cursor()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			val, err := decodeValue(v)
			if err != nil {
				return err
			}
			out[string(k[len(prefix):])] = val
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetUserVariable returns one variable, or a *variables.NotFoundError.
func (s *Store) GetUserVariable(ctx context.Context, roomID, userID, name string) (int32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := checkIDs(roomID, userID); err != nil {
		return 0, err
	}
	var (
		val   int32
		found bool
	)
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketVariables).Get(variableKey(roomID, userID, name))
		if raw == nil {
			return nil
		}
		found = true
		var err error
		val, err = decodeValue(raw)
		return err
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, &variables.NotFoundError{Name: name}
	}
	return val, nil
}

// SetUserVariable creates or replaces a variable.
func (s *Store) SetUserVariable(ctx context.Context, roomID, userID, name string, value int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkIDs(roomID, userID, name); err != nil {
		return err
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVariables).Put(variableKey(roomID, userID, name), encodeValue(value))
	})
}

// DeleteUserVariable removes a variable, or returns a *variables.NotFoundError.
func (s *Store) DeleteUserVariable(ctx context.Context, roomID, userID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkIDs(roomID, userID); err != nil {
		return err
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVariables)
		key := variableKey(roomID, userID, name)
		if b.Get(key) == nil {
			return &variables.NotFoundError{Name: name}
		}
		return b.Delete(key)
	})
}

// SetPasswordHash creates or replaces an account.
func (s *Store) SetPasswordHash(ctx context.Context, userID, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAccounts).Put([]byte(userID), []byte(hash))
	})
}

// PasswordHash returns the account's hash, or accounts.ErrNotRegistered.
func (s *Store) PasswordHash(ctx context.Context, userID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var hash string
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketAccounts).Get([]byte(userID))
		if raw == nil {
			return accounts.ErrNotRegistered
		}
		hash = string(raw)
		return nil
	})
	return hash, err
}

// DeleteAccount removes an account, or returns accounts.ErrNotRegistered.
func (s *Store) DeleteAccount(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAccounts)
		if b.Get([]byte(userID)) == nil {
			return accounts.ErrNotRegistered
		}
		return b.Delete([]byte(userID))
	})
}

var (
	_ variables.Store = (*Store)(nil)
	_ accounts.Store  = (*Store)(nil)
)
