// Package testutil starts throwaway infrastructure for integration tests.
// Every helper registers its own teardown with t.Cleanup.
package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pgpkg "github.com/Mrinal-Agrawal21/veera-app/pkg/postgres"
)

const postgresImage = "postgres:16-alpine"

// Postgres is a migrated PostgreSQL instance with an open pool.
type Postgres struct {
	DSN  string
	Pool *pgxpool.Pool
}

// StartPostgres runs PostgreSQL in a container and applies the migrations in
// migrationsDir with the same migrator the daemon uses.
func StartPostgres(t *testing.T, migrationsDir string) *Postgres {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("veera_test"),
		postgres.WithUsername("veera"),
		postgres.WithPassword("veera"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { terminate(t, "postgres", container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}
	if err := pgpkg.MigrateUp(dsn, migrationsDir); err != nil {
		t.Fatalf("migrate %s: %v", migrationsDir, err)
	}

	pool, err := pgpkg.NewPool(ctx, pgpkg.PoolConfig{URL: dsn, MaxConns: 5})
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return &Postgres{DSN: dsn, Pool: pool}
}

// Truncate empties the given tables so subtests start from a clean store.
func (p *Postgres) Truncate(t *testing.T, tables ...string) {
	t.Helper()

	names := make([]string, len(tables))
	for i, table := range tables {
		names[i] = pgx.Identifier{table}.Sanitize()
	}
	if _, err := p.Pool.Exec(context.Background(), "TRUNCATE "+strings.Join(names, ", ")); err != nil {
		t.Fatalf("truncate %v: %v", tables, err)
	}
}

func terminate(t *testing.T, name string, c testcontainers.Container) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Terminate(ctx); err != nil {
		t.Logf("terminate %s container: %v", name, err)
	}
}
