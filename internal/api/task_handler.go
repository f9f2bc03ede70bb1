package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service"
)

// TaskHandler handles the /tasks endpoints. Every operation is scoped to the
// authenticated user.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, req.Description, req.Completed)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// ListTasks handles GET /tasks?completed=&sortBy=&limit=&skip=.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), user.ID, parseTaskQuery(r.URL.Query()))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	task, err := h.tasks.Get(r.Context(), user.ID, id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateTask handles PATCH /tasks/{id}. The allow-list is checked before the
// task is looked up.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	keys, err := shared.DecodeJSONWithKeys(r, &req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if err := domain.TaskPatchFields.Check(keys); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), user.ID, id, req.patch())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id}. The response is the deleted task.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	task, err := h.tasks.Delete(r.Context(), user.ID, id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}
