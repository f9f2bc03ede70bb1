package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/mocks"
	"github.com/phrazzld/task-manager-api/internal/platform/sqlite"
	"github.com/phrazzld/task-manager-api/internal/platform/sqlstore"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/testdb"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db       *sql.DB
	users    *sqlstore.UserStore
	tasks    *sqlstore.TaskStore
	notifier *mocks.MockNotifier
	userSvc  *service.UserServiceImpl
	taskSvc  service.TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testdb.NewSQLite(t)
	f := &fixture{
		db:       db,
		users:    sqlstore.NewUserStore(db, sqlite.Dialect{}, nil),
		tasks:    sqlstore.NewTaskStore(db, sqlite.Dialect{}, nil),
		notifier: &mocks.MockNotifier{},
	}

	var err error
	f.userSvc, err = service.NewUserService(db, f.users, f.tasks, &mocks.MockPasswordHasher{}, f.notifier, nil)
	require.NoError(t, err)
	f.taskSvc, err = service.NewTaskService(f.tasks, nil)
	require.NoError(t, err)

	return f
}

func (f *fixture) signup(t *testing.T, email string) *domain.User {
	t.Helper()

	user, err := f.userSvc.Create(context.Background(), service.NewUserParams{
		Name:     "Test User",
		Email:    email,
		Password: "s3cretpass",
		Age:      30,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) addTask(t *testing.T, owner uuid.UUID, description string) *domain.Task {
	t.Helper()

	task, err := f.taskSvc.Create(context.Background(), owner, description, false)
	require.NoError(t, err)
	return task
}
