package storage

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5"
	_ "github.com/lib/pq"

	"github.com/tomislacker/photos3/internal/logging"
)

const migrationPath = "migrations"

func runMigrations(db *sql.DB) error {
	const op = "storage.migrations"

	goose.SetDialect("postgres")

	err := goose.Up(db, migrationPath)
	if err != nil {
		if err == goose.ErrNoNextVersion {
			logging.Info("No migrations to apply.")
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	logging.Info("Database migrations applied successfully.")
	return nil
}
