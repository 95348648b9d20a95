package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dicebot/internal/storage/postgres"
	"github.com/cory-johannsen/dicebot/internal/storage/storetest"
	"github.com/cory-johannsen/dicebot/internal/testutil"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	pc := testutil.StartPostgres(t)

	err := pc.Pool.CheckSchema(ctx)
	require.ErrorIs(t, err, postgres.ErrSchemaMissing)
	assert.Contains(t, err.Error(), "user_variables, accounts")

	pc.Migrate(t)
	require.NoError(t, pc.Pool.CheckSchema(ctx))

	require.NoError(t, pc.Pool.Health(ctx, 5*time.Second))
	storetest.Run(t, postgres.NewStore(pc.Pool))
}

func TestStore_ConcurrentUpserts(t *testing.T) {
	pc := testutil.StartPostgres(t, testutil.WithSchema())
	s := postgres.NewStore(pc.Pool)
	ctx := context.Background()

	done := make(chan error, 20)
	for i := range 20 {
		go func() {
			done <- s.SetUserVariable(ctx, "room", "user", "x", int32(i))
		}()
	}
	for range 20 {
		require.NoError(t, <-done)
	}

	all, err := s.GetUserVariables(ctx, "room", "user")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
