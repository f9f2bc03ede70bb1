package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/platform/migrations"
	"github.com/phrazzld/task-manager-api/internal/platform/postgres"
	"github.com/phrazzld/task-manager-api/internal/platform/sqlite"
	"github.com/phrazzld/task-manager-api/internal/platform/sqlstore"
)

// setupAppDatabase opens the configured database and returns it with the
// SQL dialect the stores should use.
func setupAppDatabase(
	ctx context.Context,
	cfg config.DatabaseConfig,
	log *slog.Logger,
) (*sql.DB, sqlstore.Dialect, error) {
	var (
		db      *sql.DB
		dialect sqlstore.Dialect
		err     error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = sqlite.Open(ctx, cfg.URL)
		dialect = sqlite.Dialect{}
	case config.DriverPostgres:
		db, err = postgres.Open(ctx, cfg)
		dialect = postgres.Dialect{}
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	log.Info("database connection established", slog.String("driver", cfg.Driver))
	return db, dialect, nil
}

// migrateUp brings the schema up to date before the server starts.
func migrateUp(ctx context.Context, db *sql.DB, driver string, log *slog.Logger) error {
	m, err := migrations.New(db, driver)
	if err != nil {
		return err
	}

	n, err := m.Up(logger.WithLogger(ctx, log))
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info("database schema up to date", slog.Int("applied", n))
	return nil
}
