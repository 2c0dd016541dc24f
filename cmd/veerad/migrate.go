package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Mrinal-Agrawal21/veera-app/internal/infrastructure/config"
	"github.com/Mrinal-Agrawal21/veera-app/pkg/postgres"
)

var migrateFlags struct {
	databaseURL string
	dir         string
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the incident store schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dsn, err := migrationDSN()
		if err != nil {
			return err
		}
		if err := postgres.MigrateUp(dsn, migrateFlags.dir); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations (drops the incident history)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dsn, err := migrationDSN()
		if err != nil {
			return err
		}
		if err := postgres.MigrateDown(dsn, migrateFlags.dir); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dsn, err := migrationDSN()
		if err != nil {
			return err
		}
		state, err := postgres.CurrentMigration(dsn, migrateFlags.dir)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), describeMigration(state))
		return nil
	},
}

func describeMigration(state postgres.MigrationState) string {
	switch {
	case !state.Applied:
		return "no migrations applied"
	case state.Dirty:
		return fmt.Sprintf("version %d (dirty: a migration failed part way, fix it and force the version)", state.Version)
	default:
		return fmt.Sprintf("version %d", state.Version)
	}
}

func init() {
	_ = godotenv.Load()

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = config.DefaultMigrationsDir
	}

	f := migrateCmd.PersistentFlags()
	f.StringVar(&migrateFlags.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	f.StringVar(&migrateFlags.dir, "dir", dir, "Directory holding the migration files")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func migrationDSN() (string, error) {
	if migrateFlags.databaseURL == "" {
		return "", fmt.Errorf("%w: --database-url or DATABASE_URL is required", config.ErrConfiguration)
	}
	return migrateFlags.databaseURL, nil
}
