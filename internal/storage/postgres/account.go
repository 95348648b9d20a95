package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dicebot/internal/accounts"
)

// AccountRepository stores bot account password hashes.
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates an AccountRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// SetPasswordHash inserts or replaces the user's password hash.
//
// Precondition: userID and hash must be non-empty.
func (r *AccountRepository) SetPasswordHash(ctx context.Context, userID, hash string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO accounts (user_id, password_hash)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE
		 SET password_hash = EXCLUDED.password_hash, updated_at = NOW()`,
		userID, hash,
	)
	if err != nil {
		return fmt.Errorf("upserting account: %w", err)
	}
	return nil
}

// PasswordHash returns the stored hash for the user.
//
// Postcondition: Returns the hash, or accounts.ErrNotRegistered.
func (r *AccountRepository) PasswordHash(ctx context.Context, userID string) (string, error) {
	var hash string
	err := r.db.QueryRow(ctx,
		`SELECT password_hash FROM accounts WHERE user_id = $1`,
		userID,
	).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", accounts.ErrNotRegistered
		}
		return "", fmt.Errorf("querying account: %w", err)
	}
	return hash, nil
}

// DeleteAccount removes the user's account.
//
// Postcondition: Returns nil, or accounts.ErrNotRegistered when no row existed.
func (r *AccountRepository) DeleteAccount(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return accounts.ErrNotRegistered
	}
	return nil
}

var _ accounts.Store = (*AccountRepository)(nil)
