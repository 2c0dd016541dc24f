package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres:// driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // file:// source
)

// MigrationState reports the schema version recorded in the database.
type MigrationState struct {
	Version uint
	Dirty   bool
	Applied bool
}

// MigrateUp applies every pending migration in dir. dir may be a plain path
// or a file:// URL. Being already up to date is not an error.
func MigrateUp(dsn, dir string) error {
	return withMigrator(dsn, dir, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("postgres: migrate up: %w", err)
		}
		return nil
	})
}

// MigrateDown reverts every applied migration.
func MigrateDown(dsn, dir string) error {
	return withMigrator(dsn, dir, func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("postgres: migrate down: %w", err)
		}
		return nil
	})
}

// CurrentMigration returns the applied schema version, if any.
func CurrentMigration(dsn, dir string) (MigrationState, error) {
	var state MigrationState
	err := withMigrator(dsn, dir, func(m *migrate.Migrate) error {
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			return nil
		case err != nil:
			return fmt.Errorf("postgres: read migration version: %w", err)
		}
		state = MigrationState{Version: version, Dirty: dirty, Applied: true}
		return nil
	})
	return state, err
}

func withMigrator(dsn, dir string, fn func(*migrate.Migrate) error) error {
	if strings.TrimSpace(dsn) == "" {
		return ErrNoURL
	}
	m, err := migrate.New(migrationSource(dir), dsn)
	if err != nil {
		return fmt.Errorf("postgres: open migrations: %w", err)
	}
	defer m.Close()
	return fn(m)
}

func migrationSource(dir string) string {
	if strings.HasPrefix(dir, "file://") {
		return dir
	}
	return "file://" + dir
}
