package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     uuid.UUID `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTask creates a task for owner. The description is trimmed and must not
// be empty.
func NewTask(ownerID uuid.UUID, description string, completed bool) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.Must(uuid.NewV7()),
		Description: strings.TrimSpace(description),
		Completed:   completed,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	var errs []error

	if t.ID == uuid.Nil {
		errs = append(errs, NewValidationError("id", "is required", ErrInvalidID))
	}
	if t.OwnerID == uuid.Nil {
		errs = append(errs, NewValidationError("owner", "is required", ErrInvalidID))
	}
	if t.Description == "" {
		errs = append(errs, NewValidationError("description", "is required", ErrEmptyContent))
	}

	return errors.Join(errs...)
}

// TaskPatch holds the fields of a task update. Nil means "leave unchanged".
type TaskPatch struct {
	Description *string
	Completed   *bool
}

// Apply copies the set fields onto t and re-validates it.
func (p TaskPatch) Apply(t *Task) error {
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t.Validate()
}

// TaskSortField names a sortable task attribute as clients spell it.
type TaskSortField string

// Sortable task fields.
const (
	SortByCreatedAt   TaskSortField = "createdAt"
	SortByUpdatedAt   TaskSortField = "updatedAt"
	SortByDescription TaskSortField = "description"
	SortByCompleted   TaskSortField = "completed"
)

// TaskSort orders a task listing.
type TaskSort struct {
	Field      TaskSortField
	Descending bool
}

// ParseTaskSort parses "<field>_<asc|desc>". Any suffix other than "desc"
// sorts ascending. It returns nil for an unknown field, which keeps the
// default (insertion) order.
func ParseTaskSort(raw string) *TaskSort {
	if raw == "" {
		return nil
	}

	field, direction, _ := strings.Cut(raw, "_")
	switch TaskSortField(field) {
	case SortByCreatedAt, SortByUpdatedAt, SortByDescription, SortByCompleted:
	default:
		return nil
	}

	return &TaskSort{
		Field:      TaskSortField(field),
		Descending: direction == "desc",
	}
}

// TaskQuery filters, orders and pages an owner's task listing. Zero Limit
// and Skip mean "no limit" and "skip nothing".
type TaskQuery struct {
	Completed *bool
	Sort      *TaskSort
	Limit     int
	Skip      int
}
