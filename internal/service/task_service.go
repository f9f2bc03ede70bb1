package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// TaskService provides task operations scoped to a single owner. A task
// owned by someone else behaves exactly like a missing one.
type TaskService interface {
	// Create stores a new task owned by ownerID.
	Create(ctx context.Context, ownerID uuid.UUID, description string, completed bool) (*domain.Task, error)

	// List returns ownerID's tasks filtered, ordered and paged by q.
	List(ctx context.Context, ownerID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error)

	// Get returns one of ownerID's tasks.
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// Update applies patch to one of ownerID's tasks.
	Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes one of ownerID's tasks and returns it.
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
}

type taskServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

func (s *taskServiceImpl) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	description string,
	completed bool,
) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, description, completed)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logError(ctx, "failed to create task", err, ownerID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", ownerID.String()))
	return task, nil
}

func (s *taskServiceImpl) List(ctx context.Context, ownerID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx, ownerID, q)
	if err != nil {
		s.logError(ctx, "failed to list tasks", err, ownerID)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *taskServiceImpl) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		s.logError(ctx, "failed to get task", err, ownerID)
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *taskServiceImpl) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		s.logError(ctx, "failed to load task for update", err, ownerID)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if err := patch.Apply(task); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		s.logError(ctx, "failed to update task", err, ownerID)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.Delete(ctx, ownerID, id)
	if err != nil {
		s.logError(ctx, "failed to delete task", err, ownerID)
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return task, nil
}

// logError logs unexpected store failures. Not-found is a normal outcome.
func (s *taskServiceImpl) logError(ctx context.Context, msg string, err error, ownerID uuid.UUID) {
	if store.IsNotFoundError(err) {
		return
	}
	logger.FromContextOrDefault(ctx, s.logger).Error(msg,
		slog.String("error", redact.Error(err)),
		slog.String("owner_id", ownerID.String()))
}
