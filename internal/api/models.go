package api

import (
	"github.com/phrazzld/task-manager-api/internal/domain"
)

// SignupRequest defines the payload for POST /users.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

// LoginRequest defines the payload for POST /users/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest defines the payload for PATCH /users/me. Absent and null
// fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

func (r UpdateUserRequest) patch() domain.UserPatch {
	return domain.UserPatch{Name: r.Name, Email: r.Email, Password: r.Password, Age: r.Age}
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// CreateTaskRequest defines the payload for POST /tasks. Any other key,
// including owner, is ignored.
type CreateTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// UpdateTaskRequest defines the payload for PATCH /tasks/{id}.
type UpdateTaskRequest struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (r UpdateTaskRequest) patch() domain.TaskPatch {
	return domain.TaskPatch{Description: r.Description, Completed: r.Completed}
}
