package postgres

import (
	"github.com/cory-johannsen/dicebot/internal/accounts"
	"github.com/cory-johannsen/dicebot/internal/variables"
)

// Store combines the variable and account repositories over one pool.
type Store struct {
	*VariableRepository
	*AccountRepository
}

// NewStore creates a Store using p for every query.
//
// Precondition: p must be open.
func NewStore(p *Pool) *Store {
	return &Store{
		VariableRepository: NewVariableRepository(p.DB()),
		AccountRepository:  NewAccountRepository(p.DB()),
	}
}

var (
	_ variables.Store = (*Store)(nil)
	_ accounts.Store  = (*Store)(nil)
)
