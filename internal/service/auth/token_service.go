package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// Authenticator resolves a bearer token to the user it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// TokenService manages per-user session tokens. A token authenticates its
// user only while it is in that user's active set: issuing adds it, logout
// removes it, and logout-all clears the set.
type TokenService struct {
	jwt   JWTService
	users store.UserStore
}

// Ensure TokenService implements Authenticator interface
var _ Authenticator = (*TokenService)(nil)

// NewTokenService creates a TokenService.
func NewTokenService(jwt JWTService, users store.UserStore) *TokenService {
	return &TokenService{jwt: jwt, users: users}
}

// Issue signs a new token for userID and adds it to the user's set.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.jwt.GenerateToken(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := s.users.AddToken(ctx, userID, token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

// Authenticate verifies token and loads its user. Every failure, including
// a revoked token or a deleted user, is reported as ErrInvalidToken.
func (s *TokenService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.ValidateToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByToken(ctx, claims.UserID, token)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			logger.FromContext(ctx).Error("failed to load user for token",
				slog.String("error", err.Error()),
				slog.String("user_id", claims.UserID.String()))
		}
		return nil, ErrInvalidToken
	}
	return user, nil
}

// Revoke removes one token from the user's set.
func (s *TokenService) Revoke(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.users.RemoveToken(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevokeAll empties the user's token set.
func (s *TokenService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.ClearTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}
