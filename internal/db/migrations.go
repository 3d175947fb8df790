package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(ctx context.Context, tx *sqlx.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_form_template_project_and_user_tables",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_project_status_index",
		Up:      migrationV2,
	},
}

// LatestVersion is the version a fully migrated database reports.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// RunMigrations executes all pending migrations, each in its own
// transaction together with its schema_version row.
func RunMigrations(ctx context.Context, database *sqlx.DB) error {
	_, err := database.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	current, err := CurrentVersion(ctx, database)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		slog.Info("running migration", "version", migration.Version, "name", migration.Name)

		tx, err := database.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(ctx, tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = tx.ExecContext(ctx, tx.Rebind("INSERT INTO schema_version (version) VALUES (?)"), migration.Version)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// CurrentVersion returns the highest applied migration, 0 for a fresh database.
func CurrentVersion(ctx context.Context, database *sqlx.DB) (int, error) {
	var version int
	err := database.GetContext(ctx, &version, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}

// migrationV1 creates the static tables.
func migrationV1(ctx context.Context, tx *sqlx.Tx) error {
	for _, stmt := range Statements(SchemaSQL) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrationV2 indexes project status, the most common search filter.
func migrationV2(ctx context.Context, tx *sqlx.Tx) error {
	_, err := tx.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_project_status ON project(status)")
	return err
}
