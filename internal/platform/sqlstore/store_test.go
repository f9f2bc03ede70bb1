package sqlstore_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/sqlite"
	"github.com/phrazzld/task-manager-api/internal/platform/sqlstore"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/phrazzld/task-manager-api/internal/testdb"
	"github.com/stretchr/testify/require"
)

type stores struct {
	db    *sql.DB
	users *sqlstore.UserStore
	tasks *sqlstore.TaskStore
}

func newSQLiteStores(t *testing.T) stores {
	t.Helper()
	db := testdb.NewSQLite(t)
	return newStores(db, sqlite.Dialect{})
}

func newStores(db *sql.DB, dialect sqlstore.Dialect) stores {
	return stores{
		db:    db,
		users: sqlstore.NewUserStore(db, dialect, nil),
		tasks: sqlstore.NewTaskStore(db, dialect, nil),
	}
}

// createUser stores a user with a placeholder hash.
func createUser(t *testing.T, users store.UserStore, email string) *domain.User {
	t.Helper()

	user, err := domain.NewUser("Test User", email, "s3cretpass", 30)
	require.NoError(t, err)
	user.HashedPassword = "$2a$10$placeholderhash"
	user.Password = ""

	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func createTask(t *testing.T, tasks store.TaskStore, owner uuid.UUID, description string, completed bool) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(owner, description, completed)
	require.NoError(t, err)
	require.NoError(t, tasks.Create(context.Background(), task))
	return task
}
