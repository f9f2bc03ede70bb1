package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
)

// TaskStore defines the interface for task persistence. Every lookup is
// scoped to an owner: a task owned by someone else is reported as
// ErrTaskNotFound.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves one of owner's tasks.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// List returns owner's tasks filtered, ordered and paged by q.
	// Without a sort the tasks come back in creation order.
	List(ctx context.Context, ownerID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error)

	// Update writes description and completed, and bumps UpdatedAt.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes one of owner's tasks and returns it as it was.
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// DeleteByOwner removes every task owned by ownerID and reports how many
	// were removed.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
