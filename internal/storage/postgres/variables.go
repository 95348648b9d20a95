package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dicebot/internal/variables"
)

// VariableRepository stores per-user, per-room integer variables.
type VariableRepository struct {
	db *pgxpool.Pool
}

// NewVariableRepository creates a VariableRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewVariableRepository(db *pgxpool.Pool) *VariableRepository {
	return &VariableRepository{db: db}
}

// GetUserVariables returns every variable the user has in the room in one query.
//
// Postcondition: Returns a non-nil map, empty when the user has no variables.
func (r *VariableRepository) GetUserVariables(ctx context.Context, roomID, userID string) (map[string]int32, error) {
	rows, err := r.db.Query(ctx,
		`SELECT key, value FROM user_variables
		 WHERE room_id = $1 AND user_id = $2`,
		roomID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying variables: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int32)
	for rows.Next() {
		var (
			key   string
			value int32
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning variable: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating variables: %w", err)
	}
	return out, nil
}

// GetUserVariable returns one variable.
//
// Postcondition: Returns the value, or a *variables.NotFoundError.
func (r *VariableRepository) GetUserVariable(ctx context.Context, roomID, userID, name string) (int32, error) {
	var value int32
	err := r.db.QueryRow(ctx,
		`SELECT value FROM user_variables
		 WHERE room_id = $1 AND user_id = $2 AND key = $3`,
		roomID, userID, name,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &variables.NotFoundError{Name: name}
		}
		return 0, fmt.Errorf("querying variable: %w", err)
	}
	return value, nil
}

// SetUserVariable inserts or replaces a variable.
func (r *VariableRepository) SetUserVariable(ctx context.Context, roomID, userID, name string, value int32) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_variables (room_id, user_id, key, value)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (room_id, user_id, key) DO UPDATE
		 SET value = EXCLUDED.value`,
		roomID, userID, name, value,
	)
	if err != nil {
		return fmt.Errorf("upserting variable: %w", err)
	}
	return nil
}

// DeleteUserVariable removes a variable.
//
// Postcondition: Returns nil, or a *variables.NotFoundError when no row existed.
func (r *VariableRepository) DeleteUserVariable(ctx context.Context, roomID, userID, name string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM user_variables
		 WHERE room_id = $1 AND user_id = $2 AND key = $3`,
		roomID, userID, name,
	)
	if err != nil {
		return fmt.Errorf("deleting variable: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &variables.NotFoundError{Name: name}
	}
	return nil
}

var _ variables.Store = (*VariableRepository)(nil)
