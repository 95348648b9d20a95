// Package testutil provides test helpers: a disposable PostgreSQL database,
// a line-oriented Telnet client and self-signed TLS material.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/dicebot/internal/config"
	"github.com/cory-johannsen/dicebot/internal/storage/postgres"
	"github.com/cory-johannsen/dicebot/migrations"
)

const postgresImage = "postgres:16-alpine"

// Postgres is a throwaway database running in a container for the lifetime
// of one test.
type Postgres struct {
	Pool   *postgres.Pool
	Config config.DatabaseConfig
}

// PostgresOption customises StartPostgres.
type PostgresOption func(*postgresOptions)

type postgresOptions struct {
	migrate bool
}

// WithSchema applies every embedded up migration once the database is
// reachable.
func WithSchema() PostgresOption {
	return func(o *postgresOptions) { o.migrate = true }
}

// StartPostgres runs a PostgreSQL container and connects a Pool to it. The
// container and pool are released by t.Cleanup.
//
// Precondition: Docker must be available; the test is skipped with -short.
// Postcondition: Pool is connected, and with WithSchema the dicebot tables
// exist.
func StartPostgres(t *testing.T, opts ...PostgresOption) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests need docker; skipped in short mode")
	}
	var o postgresOptions
	for _, opt := range opts {
		opt(&o)
	}

	ctx := context.Background()
	start := time.Now()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "dicebot",
				"POSTGRES_PASSWORD": "dicebot",
				"POSTGRES_DB":       "dicebot_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting %s: %v", postgresImage, err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	cfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "dicebot",
		Password:        "dicebot",
		Name:            "dicebot_test",
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		t.Fatalf("connecting to %s:%d: %v", host, port.Int(), err)
	}
	t.Cleanup(pool.Close)

	p := &Postgres{Pool: pool, Config: cfg}
	if o.migrate {
		p.Migrate(t)
	}
	t.Logf("postgres ready at %s:%d [%s]", host, port.Int(), time.Since(start))
	return p
}

// Migrate applies the embedded up migrations to an already running
// database, for tests that first inspect the empty schema.
func (p *Postgres) Migrate(t *testing.T) {
	t.Helper()
	stmts, err := migrations.Up()
	if err != nil {
		t.Fatalf("reading migrations: %v", err)
	}
	for _, stmt := range stmts {
		if _, err := p.Pool.DB().Exec(context.Background(), stmt); err != nil {
			t.Fatalf("applying migration: %v", err)
		}
	}
}
