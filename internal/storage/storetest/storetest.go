// Package storetest holds behaviour tests shared by every storage backend.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dicebot/internal/accounts"
	"github.com/cory-johannsen/dicebot/internal/variables"
)

// Store is the combined contract every backend implements.
type Store interface {
	variables.Store
	accounts.Store
}

// Run exercises s. The store must be empty when Run starts.
func Run(t *testing.T, s Store) {
	t.Helper()
	t.Run("Variables", func(t *testing.T) { testVariables(t, s) })
	t.Run("Scoping", func(t *testing.T) { testScoping(t, s) })
	t.Run("Accounts", func(t *testing.T) { testAccounts(t, s) })
}

func testVariables(t *testing.T, s Store) {
	ctx := context.Background()

	all, err := s.GetUserVariables(ctx, "!room", "@alice")
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = s.GetUserVariable(ctx, "!room", "@alice", "str")
	assertNotFound(t, err, "str")

	require.NoError(t, s.SetUserVariable(ctx, "!room", "@alice", "str", 3))
	require.NoError(t, s.SetUserVariable(ctx, "!room", "@alice", "luck", -7))
	require.NoError(t, s.SetUserVariable(ctx, "!room", "@alice", "str", 5))

	v, err := s.GetUserVariable(ctx, "!room", "@alice", "str")
	require.NoError(t, err)
	assert.Equal(t, int32(5), v)

	all, err = s.GetUserVariables(ctx, "!room", "@alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]int32{"str": 5, "luck": -7}, all)

	require.NoError(t, s.DeleteUserVariable(ctx, "!room", "@alice", "str"))
	assertNotFound(t, s.DeleteUserVariable(ctx, "!room", "@alice", "str"), "str")

	all, err = s.GetUserVariables(ctx, "!room", "@alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]int32{"luck": -7}, all)
}

func testScoping(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.SetUserVariable(ctx, "a", "bob", "x", 1))
	require.NoError(t, s.SetUserVariable(ctx, "ab", "ob", "x", 2))
	require.NoError(t, s.SetUserVariable(ctx, "a", "bobby", "x", 3))

	for _, tc := range []struct {
		room, user string
		want       int32
	}{
		{"a", "bob", 1},
		{"ab", "ob", 2},
		{"a", "bobby", 3},
	} {
		all, err := s.GetUserVariables(ctx, tc.room, tc.user)
		require.NoError(t, err)
		assert.Equal(t, map[string]int32{"x": tc.want}, all, "room %q user %q", tc.room, tc.user)
	}
}

func testAccounts(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.PasswordHash(ctx, "@carol")
	assert.ErrorIs(t, err, accounts.ErrNotRegistered)
	assert.ErrorIs(t, s.DeleteAccount(ctx, "@carol"), accounts.ErrNotRegistered)

	require.NoError(t, s.SetPasswordHash(ctx, "@carol", "h1"))
	require.NoError(t, s.SetPasswordHash(ctx, "@carol", "h2"))
	h, err := s.PasswordHash(ctx, "@carol")
	require.NoError(t, err)
	assert.Equal(t, "h2", h)

	require.NoError(t, s.DeleteAccount(ctx, "@carol"))
	_, err = s.PasswordHash(ctx, "@carol")
	assert.ErrorIs(t, err, accounts.ErrNotRegistered)
}

func assertNotFound(t *testing.T, err error, name string) {
	t.Helper()
	var nf *variables.NotFoundError
	require.True(t, errors.As(err, &nf), "expected *variables.NotFoundError, got %v", err)
	assert.Equal(t, name, nf.Name)
}
