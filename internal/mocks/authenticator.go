package mocks

import (
	"context"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
)

// MockAuthenticator implements auth.Authenticator for middleware tests.
type MockAuthenticator struct {
	AuthenticateFn func(ctx context.Context, token string) (*domain.User, error)

	// Users maps tokens to users when AuthenticateFn is nil. Unknown tokens
	// fail with auth.ErrInvalidToken.
	Users map[string]*domain.User
}

var _ auth.Authenticator = (*MockAuthenticator)(nil)

// Authenticate implements the auth.Authenticator interface
func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, token)
	}
	if user, ok := m.Users[token]; ok {
		return user, nil
	}
	return nil, auth.ErrInvalidToken
}
