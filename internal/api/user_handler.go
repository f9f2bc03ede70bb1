package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/avatar"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service"
)

// multipartOverhead is the room left for multipart headers and boundaries on
// top of the avatar size limit.
const multipartOverhead = 64 << 10

// SessionManager issues and revokes session tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID uuid.UUID) (string, error)
	Revoke(ctx context.Context, userID uuid.UUID, token string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// UserHandler handles the /users endpoints.
type UserHandler struct {
	users    service.UserService
	sessions SessionManager
	logger   *slog.Logger
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(users service.UserService, sessions SessionManager, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:    users,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "user_handler")),
	}
}

// Signup handles POST /users.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), service.NewUserParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	token, err := h.sessions.Issue(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Login handles POST /users/login. Every failure other than a server error
// is a 400 with no body, so an unknown email looks like a wrong password.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.loginFailed(w, r, err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		h.loginFailed(w, r, err)
		return
	}

	user, err := h.users.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.loginFailed(w, r, err)
			return
		}
		respondWithServiceError(w, r, err)
		return
	}

	token, err := h.sessions.Issue(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{User: user, Token: token})
}

func (h *UserHandler) loginFailed(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "", nil, err)
}

// Logout handles POST /users/logout by revoking the token used for the request.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	token, _ := shared.TokenFromContext(r.Context())

	if err := h.sessions.Revoke(r.Context(), user.ID, token); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithStatus(w, r, http.StatusOK)
}

// LogoutAll handles POST /users/logoutall by revoking every token of the user.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.sessions.RevokeAll(r.Context(), user.ID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithStatus(w, r, http.StatusOK)
}

// GetMe handles GET /users/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// UpdateMe handles PATCH /users/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	keys, err := shared.DecodeJSONWithKeys(r, &req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if err := domain.UserPatchFields.Check(keys); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	updated, err := h.users.UpdateFields(r.Context(), user, req.patch())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

// DeleteMe handles DELETE /users/me. The response is the deleted user.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), user); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// UploadAvatar handles POST /users/me/avatar. The image is read from the
// multipart field "avatar".
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, avatar.MaxUploadSize+multipartOverhead)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes):
			err = avatar.ErrFileTooLarge
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			err = avatar.ErrMissing
		default:
			logger.FromContext(r.Context()).Debug("failed to parse avatar upload",
				slog.String("error", err.Error()))
			err = avatar.ErrMissing
		}
		respondWithServiceError(w, r, err)
		return
	}
	defer func() { _ = file.Close() }()

	err = h.users.SetAvatar(r.Context(), user, service.AvatarUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithStatus(w, r, http.StatusOK)
}

// DeleteAvatar handles DELETE /users/me/avatar.
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.users.ClearAvatar(r.Context(), user); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithStatus(w, r, http.StatusOK)
}

// GetAvatar handles the public GET /users/{id}/avatar.
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	data, err := h.users.GetAvatar(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", avatar.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("failed to write avatar", slog.String("error", err.Error()))
	}
}
