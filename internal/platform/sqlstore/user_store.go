package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/store"
)

const userColumns = `id, name, email, password_hash, age, created_at, updated_at`

// UserStore implements store.UserStore on top of database/sql.
type UserStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a UserStore. If logger is nil, a default logger will be used.
func NewUserStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "user_store")),
	}
}

// WithTx implements store.UserStore.WithTx
func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &UserStore{db: tx, dialect: s.dialect, logger: s.logger}
}

func (s *UserStore) q(query string) string {
	return s.dialect.Rebind(query)
}

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return fmt.Errorf("%w: password hash is required", store.ErrInvalidEntity)
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, name, email, password_hash, age, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		user.ID, user.Name, user.Email, user.HashedPassword, user.Age,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		err = s.dialect.MapError(err)
		if errors.Is(err, store.ErrDuplicate) {
			log.Debug("email already registered", slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	log.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	return s.scanUser(ctx, row)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+userColumns+` FROM users WHERE email = ?`),
		domain.NormalizeEmail(email))
	return s.scanUser(ctx, row)
}

// GetByToken implements store.UserStore.GetByToken
func (s *UserStore) GetByToken(ctx context.Context, id uuid.UUID, token string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, s.q(`
		SELECT u.id, u.name, u.email, u.password_hash, u.age, u.created_at, u.updated_at
		FROM users u
		JOIN user_tokens t ON t.user_id = u.id
		WHERE u.id = ? AND t.token = ?`), id, token)
	return s.scanUser(ctx, row)
}

func (s *UserStore) scanUser(ctx context.Context, row scanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.HashedPassword,
		&user.Age,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read user",
			slog.String("error", err.Error()))
		return nil, s.dialect.MapError(err)
	}
	return &user, nil
}

// Update implements store.UserStore.Update
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, s.q(`
		UPDATE users
		SET name = ?, email = ?, password_hash = ?, age = ?, updated_at = ?
		WHERE id = ?`),
		user.Name, user.Email, user.HashedPassword, user.Age, user.UpdatedAt, user.ID,
	)
	if err != nil {
		err = s.dialect.MapError(err)
		if errors.Is(err, store.ErrDuplicate) {
			return store.ErrEmailExists
		}
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	return checkRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete. Tokens go with the user via
// ON DELETE CASCADE; tasks must already be gone.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, s.q(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return s.dialect.MapError(err)
	}
	return checkRowsAffected(result, store.ErrUserNotFound)
}

// AddToken implements store.UserStore.AddToken
func (s *UserStore) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO user_tokens (user_id, token, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, token) DO NOTHING`),
		userID, token, time.Now().UTC(),
	)
	if err != nil {
		err = s.dialect.MapError(err)
		if errors.Is(err, store.ErrInvalidEntity) {
			return store.ErrUserNotFound
		}
		return err
	}
	return nil
}

// RemoveToken implements store.UserStore.RemoveToken
func (s *UserStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM user_tokens WHERE user_id = ? AND token = ?`),
		userID, token)
	return s.dialect.MapError(err)
}

// ClearTokens implements store.UserStore.ClearTokens
func (s *UserStore) ClearTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM user_tokens WHERE user_id = ?`), userID)
	return s.dialect.MapError(err)
}

// SetAvatar implements store.UserStore.SetAvatar
func (s *UserStore) SetAvatar(ctx context.Context, userID uuid.UUID, avatar []byte) error {
	var value any
	if avatar != nil {
		value = avatar
	}

	result, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET avatar = ?, updated_at = ? WHERE id = ?`),
		value, time.Now().UTC(), userID)
	if err != nil {
		return s.dialect.MapError(err)
	}
	return checkRowsAffected(result, store.ErrUserNotFound)
}

// GetAvatar implements store.UserStore.GetAvatar
func (s *UserStore) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var avatar []byte
	err := s.db.QueryRowContext(ctx, s.q(`SELECT avatar FROM users WHERE id = ?`), userID).Scan(&avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, s.dialect.MapError(err)
	}
	if len(avatar) == 0 {
		return nil, store.ErrAvatarNotFound
	}
	return avatar, nil
}
