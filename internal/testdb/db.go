package testdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/platform/migrations"
	"github.com/phrazzld/task-manager-api/internal/platform/postgres"
	"github.com/phrazzld/task-manager-api/internal/platform/sqlite"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 10 * time.Second

// PostgresURLEnv names the variable holding the integration database URL.
const PostgresURLEnv = "TASKMGR_TEST_DATABASE_URL"

// NewSQLite returns a freshly migrated SQLite database in a temp directory.
// It is closed when the test ends.
func NewSQLite(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to open sqlite test database")
	t.Cleanup(func() { _ = db.Close() })

	migrate(ctx, t, db, config.DriverSQLite)
	return db
}

// NewPostgres connects to the integration database and brings its schema
// up to date. The test is skipped if PostgresURLEnv is unset.
func NewPostgres(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv(PostgresURLEnv)
	if url == "" {
		t.Skipf("%s not set, skipping PostgreSQL integration test", PostgresURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, config.DatabaseConfig{
		Driver:       config.DriverPostgres,
		URL:          url,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	require.NoError(t, err, "failed to connect to PostgreSQL test database")
	t.Cleanup(func() { _ = db.Close() })

	migrate(ctx, t, db, config.DriverPostgres)
	return db
}

func migrate(ctx context.Context, t *testing.T, db *sql.DB, driver string) {
	t.Helper()

	m, err := migrations.New(db, driver)
	require.NoError(t, err, "failed to create migrator")

	_, err = m.Up(ctx)
	require.NoError(t, err, "failed to run migrations")
}

// WithTx runs fn inside a transaction that is always rolled back, so
// integration tests sharing one database leave nothing behind.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")
	defer func() { _ = tx.Rollback() }()

	fn(t, tx)
}
