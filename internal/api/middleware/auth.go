package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
)

// UnauthenticatedMessage is the body of every 401 response.
const UnauthenticatedMessage = "Please authenticate"

// AuthMiddleware guards routes that require a logged-in user.
type AuthMiddleware struct {
	authenticator auth.Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(authenticator auth.Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// Authenticate resolves the bearer token to a user and stores both in the
// request context. Every failure gets the same 401 response.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			log.Debug("authentication failed", slog.String("reason", "missing or malformed authorization header"))
			shared.RespondWithError(w, r, http.StatusUnauthorized, UnauthenticatedMessage)
			return
		}

		user, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			log.Debug("authentication failed", slog.String("reason", err.Error()))
			shared.RespondWithError(w, r, http.StatusUnauthorized, UnauthenticatedMessage)
			return
		}

		ctx := shared.WithUser(r.Context(), user, token)
		ctx = logger.WithLogger(ctx, log.With(slog.String("user_id", user.ID.String())))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
