package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/store"
)

const taskColumns = `id, owner_id, description, completed, created_at, updated_at`

// sortColumns is the allow-list of orderable columns. Nothing from the
// request reaches ORDER BY except through this map.
var sortColumns = map[domain.TaskSortField]string{
	domain.SortByCreatedAt:   "created_at",
	domain.SortByUpdatedAt:   "updated_at",
	domain.SortByDescription: "description",
	domain.SortByCompleted:   "completed",
}

// TaskStore implements store.TaskStore on top of database/sql.
type TaskStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a TaskStore. If logger is nil, a default logger will be used.
func NewTaskStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "task_store")),
	}
}

// WithTx implements store.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx, dialect: s.dialect, logger: s.logger}
}

func (s *TaskStore) q(query string) string {
	return s.dialect.Rebind(query)
}

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO tasks (id, owner_id, description, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		task.ID, task.OwnerID, task.Description, task.Completed, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		err = s.dialect.MapError(err)
		if errors.Is(err, store.ErrInvalidEntity) {
			log.Warn("task owner does not exist",
				slog.String("task_id", task.ID.String()),
				slog.String("owner_id", task.OwnerID.String()))
			return fmt.Errorf("%w: owner %s not found", store.ErrInvalidEntity, task.OwnerID)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", task.OwnerID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx,
		s.q(`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND owner_id = ?`), id, ownerID)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTaskNotFound
	}
	if err != nil {
		return nil, s.dialect.MapError(err)
	}
	return task, nil
}

// List implements store.TaskStore.List
func (s *TaskStore) List(ctx context.Context, ownerID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error) {
	query, args := buildListQuery(ownerID, q)

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, s.dialect.MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, s.dialect.MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, s.dialect.MapError(err)
	}
	return tasks, nil
}

// buildListQuery renders the listing query with ? placeholders.
func buildListQuery(ownerID uuid.UUID, q domain.TaskQuery) (string, []any) {
	var b strings.Builder
	args := []any{ownerID}

	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = ?`)

	if q.Completed != nil {
		b.WriteString(` AND completed = ?`)
		args = append(args, *q.Completed)
	}

	direction := "ASC"
	if q.Sort != nil {
		if column, ok := sortColumns[q.Sort.Field]; ok {
			if q.Sort.Descending {
				direction = "DESC"
			}
			b.WriteString(` ORDER BY ` + column + ` ` + direction + `, id ` + direction)
		} else {
			b.WriteString(` ORDER BY id ASC`)
		}
	} else {
		// Task IDs are UUIDv7, so id order is creation order.
		b.WriteString(` ORDER BY id ASC`)
	}

	switch {
	case q.Limit > 0:
		b.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	case q.Skip > 0:
		// SQLite only accepts OFFSET after a LIMIT.
		b.WriteString(` LIMIT ?`)
		args = append(args, int64(math.MaxInt64))
	}
	if q.Skip > 0 {
		b.WriteString(` OFFSET ?`)
		args = append(args, q.Skip)
	}

	return b.String(), args
}

func scanTask(row scanner) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, s.q(`
		UPDATE tasks
		SET description = ?, completed = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`),
		task.Description, task.Completed, task.UpdatedAt, task.ID, task.OwnerID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return s.dialect.MapError(err)
	}
	return checkRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, s.q(`
		DELETE FROM tasks
		WHERE id = ? AND owner_id = ?
		RETURNING `+taskColumns), id, ownerID)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTaskNotFound
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, s.dialect.MapError(err)
	}
	return task, nil
}

// DeleteByOwner implements store.TaskStore.DeleteByOwner
func (s *TaskStore) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	result, err := s.db.ExecContext(ctx, s.q(`DELETE FROM tasks WHERE owner_id = ?`), ownerID)
	if err != nil {
		return 0, s.dialect.MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("deleted tasks for owner",
		slog.String("owner_id", ownerID.String()),
		slog.Int64("count", n))
	return n, nil
}
