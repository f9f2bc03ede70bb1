package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
)

// currentUser returns the authenticated user placed in the context by the
// auth middleware, writing a 401 if there is none.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		respondWithServiceError(w, r, auth.ErrMissingToken)
		return nil, false
	}
	return user, true
}

// getPathUUID parses a UUID path parameter. A missing or malformed value is
// reported as domain.ErrInvalidID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, paramName))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// parseTaskQuery reads the listing parameters:
//
//	completed  "true" selects completed tasks, any other value incomplete ones
//	sortBy     <field>_<asc|desc>
//	limit      positive integer
//	skip       positive integer
//
// Malformed values are ignored rather than rejected.
func parseTaskQuery(values url.Values) domain.TaskQuery {
	var q domain.TaskQuery

	if raw := values.Get("completed"); raw != "" {
		completed := raw == "true"
		q.Completed = &completed
	}
	q.Sort = domain.ParseTaskSort(values.Get("sortBy"))
	q.Limit = positiveInt(values.Get("limit"))
	q.Skip = positiveInt(values.Get("skip"))

	return q
}

func positiveInt(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
