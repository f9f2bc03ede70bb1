// Package migrations embeds the database schema and applies it with goose.
//
// Each supported driver has its own directory of numbered SQL migrations;
// the two schemas describe the same tables.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedded embed.FS

// Migrator applies the embedded migrations for one driver.
type Migrator struct {
	provider *goose.Provider
	driver   string
}

// New returns a Migrator for db. driver is config.DriverPostgres or
// config.DriverSQLite.
func New(db *sql.DB, driver string) (*Migrator, error) {
	var dialect goose.Dialect
	switch driver {
	case config.DriverPostgres:
		dialect = goose.DialectPostgres
	case config.DriverSQLite:
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	dir, err := fs.Sub(embedded, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	return &Migrator{provider: provider, driver: driver}, nil
}

// Up applies every pending migration and returns how many were applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	results, err := m.provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, r := range results {
		log.Info("applied migration",
			slog.String("driver", m.driver),
			slog.String("file", r.Source.Path),
			slog.Duration("duration", r.Duration))
	}
	return len(results), nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	r, err := m.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	logger.FromContext(ctx).Info("rolled back migration",
		slog.String("driver", m.driver),
		slog.String("file", r.Source.Path))
	return nil
}

// Status describes one migration and whether it has been applied.
type Status struct {
	Version int64
	File    string
	Applied bool
}

// Status lists every known migration in version order.
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	out := make([]Status, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, Status{
			Version: s.Source.Version,
			File:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

// Version returns the current schema version, 0 when nothing is applied.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return m.provider.GetDBVersion(ctx)
}
