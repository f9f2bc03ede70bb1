package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction(t *testing.T) {
	t.Parallel()

	fnErr := errors.New("function failed")

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		fn      TxFn
		wantErr error
		errText string
	}{
		{
			name: "commits on success",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM tasks").WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectCommit()
			},
			fn: func(ctx context.Context, tx *sql.Tx) error {
				_, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE owner_id = ?", "x")
				return err
			},
		},
		{
			name: "rolls back and returns the original error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn:      func(ctx context.Context, tx *sql.Tx) error { return fnErr },
			wantErr: fnErr,
		},
		{
			name: "begin failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("connection refused"))
			},
			fn:      func(ctx context.Context, tx *sql.Tx) error { return nil },
			errText: "failed to begin transaction",
		},
		{
			name: "commit failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(errors.New("disk full"))
			},
			fn:      func(ctx context.Context, tx *sql.Tx) error { return nil },
			errText: "failed to commit transaction",
		},
		{
			name: "rollback failure keeps the original error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(errors.New("rollback broke"))
			},
			fn:      func(ctx context.Context, tx *sql.Tx) error { return fnErr },
			wantErr: fnErr,
			errText: "rollback broke",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.setup(mock)

			err = RunInTransaction(context.Background(), db, tt.fn)
			if tt.wantErr == nil && tt.errText == "" {
				assert.NoError(t, err)
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.errText != "" {
				assert.ErrorContains(t, err, tt.errText)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInTransactionPanic(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestErrorHierarchy(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(ErrUserNotFound))
	assert.True(t, IsNotFoundError(ErrTaskNotFound))
	assert.True(t, IsNotFoundError(ErrAvatarNotFound))
	assert.False(t, IsNotFoundError(ErrEmailExists))
	assert.True(t, IsDuplicateError(ErrEmailExists))
	assert.False(t, errors.Is(ErrTaskNotFound, ErrUserNotFound))
}
