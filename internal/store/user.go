package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
)

// UserStore defines the interface for user and session-token persistence.
type UserStore interface {
	// Create saves a new user. user.HashedPassword must already be set.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID. The avatar is not loaded.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByToken retrieves the user with the given ID only if token is in
	// their active token set. Returns ErrUserNotFound otherwise.
	GetByToken(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)

	// Update writes name, email, age and hashed password, and bumps UpdatedAt.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if updating to an email that already exists.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user together with their token set.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddToken appends token to the user's active set. Adding a token that is
	// already present is a no-op.
	AddToken(ctx context.Context, userID uuid.UUID, token string) error

	// RemoveToken removes one token from the set. Removing an absent token
	// is not an error.
	RemoveToken(ctx context.Context, userID uuid.UUID, token string) error

	// ClearTokens empties the user's token set.
	ClearTokens(ctx context.Context, userID uuid.UUID) error

	// SetAvatar stores avatar for the user; nil clears it.
	// Returns ErrUserNotFound if the user does not exist.
	SetAvatar(ctx context.Context, userID uuid.UUID, avatar []byte) error

	// GetAvatar returns the stored avatar bytes.
	// Returns ErrUserNotFound or ErrAvatarNotFound.
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
