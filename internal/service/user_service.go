package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/avatar"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/notify"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// NewUserParams holds the signup input.
type NewUserParams struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// AvatarUpload is an uploaded avatar file as received from the client.
type AvatarUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// UserService provides account operations.
type UserService interface {
	// Create validates and stores a new user, then sends the welcome email.
	// A taken email is reported as a validation error on "email".
	Create(ctx context.Context, params NewUserParams) (*domain.User, error)

	// VerifyCredentials returns the user owning email if password matches.
	VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error)

	// UpdateFields applies patch to user and stores the result. The password
	// is re-hashed only when the patch changes it.
	UpdateFields(ctx context.Context, user *domain.User, patch domain.UserPatch) (*domain.User, error)

	// Delete removes user and all of their tasks atomically, then sends the
	// cancellation email.
	Delete(ctx context.Context, user *domain.User) error

	// SetAvatar validates and normalizes upload and stores it as the user's avatar.
	SetAvatar(ctx context.Context, user *domain.User, upload AvatarUpload) error

	// ClearAvatar removes the user's avatar.
	ClearAvatar(ctx context.Context, user *domain.User) error

	// GetAvatar returns the stored PNG avatar of the user with id.
	GetAvatar(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	db       *sql.DB
	users    store.UserStore
	tasks    store.TaskStore
	hasher   auth.PasswordHasher
	notifier notify.Notifier
	logger   *slog.Logger
}

// Ensure UserServiceImpl implements UserService interface
var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	db *sql.DB,
	users store.UserStore,
	tasks store.TaskStore,
	hasher auth.PasswordHasher,
	notifier notify.Notifier,
	logger *slog.Logger,
) (*UserServiceImpl, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if users == nil || tasks == nil {
		return nil, fmt.Errorf("stores cannot be nil")
	}
	if hasher == nil {
		return nil, fmt.Errorf("hasher cannot be nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		db:       db,
		users:    users,
		tasks:    tasks,
		hasher:   hasher,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "user_service")),
	}, nil
}

// Create implements UserService.
func (s *UserServiceImpl) Create(ctx context.Context, params NewUserParams) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(params.Name, params.Email, params.Password, params.Age)
	if err != nil {
		return nil, err
	}

	if user.HashedPassword, err = s.hasher.Hash(user.Password); err != nil {
		log.Error("failed to hash password", slog.String("error", redact.Error(err)))
		return nil, err
	}
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to create user with existing email")
			return nil, emailTaken()
		}
		log.Error("failed to create user", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	s.notifier.NotifyWelcome(ctx, user.Name, user.Email)

	return user, nil
}

// VerifyCredentials implements UserService.
func (s *UserServiceImpl) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load user for login", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}

	// Passwords are trimmed when set, so the attempt is trimmed too.
	if err := s.hasher.Compare(user.HashedPassword, strings.TrimSpace(password)); err != nil {
		log.Debug("login attempt with wrong password", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// UpdateFields implements UserService.
func (s *UserServiceImpl) UpdateFields(
	ctx context.Context,
	user *domain.User,
	patch domain.UserPatch,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	updated := *user
	updated.Avatar = nil
	if err := patch.Apply(&updated); err != nil {
		return nil, err
	}

	if patch.PasswordChanged() {
		hash, err := s.hasher.Hash(updated.Password)
		if err != nil {
			log.Error("failed to hash password", slog.String("error", redact.Error(err)))
			return nil, err
		}
		updated.HashedPassword = hash
	}
	updated.Password = ""

	if err := s.users.Update(ctx, &updated); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, emailTaken()
		}
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to update user",
				slog.String("error", redact.Error(err)),
				slog.String("user_id", user.ID.String()))
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	log.Info("user updated",
		slog.String("user_id", user.ID.String()),
		slog.Bool("password_changed", patch.PasswordChanged()))

	return &updated, nil
}

// Delete implements UserService.
func (s *UserServiceImpl) Delete(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var removed int64
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		if removed, err = s.tasks.WithTx(tx).DeleteByOwner(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to delete tasks: %w", err)
		}
		return s.users.WithTx(tx).Delete(ctx, user.ID)
	})
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to delete user",
				slog.String("error", redact.Error(err)),
				slog.String("user_id", user.ID.String()))
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	log.Info("user deleted",
		slog.String("user_id", user.ID.String()),
		slog.Int64("tasks_deleted", removed))
	s.notifier.NotifyCancellation(ctx, user.Name, user.Email)

	return nil
}

// SetAvatar implements UserService.
func (s *UserServiceImpl) SetAvatar(ctx context.Context, user *domain.User, upload AvatarUpload) error {
	if upload.Content == nil {
		return avatar.ErrMissing
	}
	if err := avatar.CheckUpload(upload.Filename, upload.Size); err != nil {
		return err
	}

	png, err := avatar.Normalize(upload.Content)
	if err != nil {
		return err
	}

	if err := s.users.SetAvatar(ctx, user.ID, png); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to store avatar",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", user.ID.String()))
		return fmt.Errorf("failed to store avatar: %w", err)
	}
	return nil
}

// ClearAvatar implements UserService.
func (s *UserServiceImpl) ClearAvatar(ctx context.Context, user *domain.User) error {
	if err := s.users.SetAvatar(ctx, user.ID, nil); err != nil {
		return fmt.Errorf("failed to clear avatar: %w", err)
	}
	return nil
}

// GetAvatar implements UserService.
func (s *UserServiceImpl) GetAvatar(ctx context.Context, id uuid.UUID) ([]byte, error) {
	data, err := s.users.GetAvatar(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load avatar: %w", err)
	}
	return data, nil
}

func emailTaken() error {
	return domain.NewValidationError("email", "is already in use", store.ErrEmailExists)
}
