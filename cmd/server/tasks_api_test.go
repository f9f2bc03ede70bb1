package main

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ada := s.signup(t, "Ada", "ada@example.com")
	bob := s.signup(t, "Bob", "bob@example.com")

	t.Run("owner comes from the session", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/tasks", ada.Token, map[string]any{
			"description": "  write tests  ", "owner": bob.ID,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		task := decodeObject(t, rec)
		assert.Equal(t, ada.ID, task["owner"])
		assert.Equal(t, "write tests", task["description"])
		assert.Equal(t, false, task["completed"])
	})

	t.Run("empty description", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/tasks", ada.Token, map[string]any{"description": "   "})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeObject(t, rec)["fields"], "description")
	})

	t.Run("requires auth", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/tasks", "", map[string]any{"description": "x"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestTaskOwnershipIsolation(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ada := s.signup(t, "Ada", "ada@example.com")
	bob := s.signup(t, "Bob", "bob@example.com")

	task := s.createTask(t, ada.Token, "private", false)
	path := "/tasks/" + task["id"].(string)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, bob.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPatch, path, bob.Token, map[string]any{"completed": true}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, bob.Token, nil).Code)
	assert.Empty(t, decodeList(t, s.do(t, http.MethodGet, "/tasks", bob.Token, nil)))

	rec := s.do(t, http.MethodGet, path, ada.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeObject(t, rec)["completed"])
}

func TestTaskByID(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ada := s.signup(t, "Ada", "ada@example.com")
	task := s.createTask(t, ada.Token, "laundry", false)
	path := "/tasks/" + task["id"].(string)

	t.Run("malformed or unknown id", func(t *testing.T) {
		for _, p := range []string{"/tasks/not-a-uuid", "/tasks/" + uuid.NewString()} {
			rec := s.do(t, http.MethodGet, p, ada.Token, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code, p)
			assert.Empty(t, rec.Body.String())
		}
	})

	t.Run("disallowed update key", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, path, ada.Token, map[string]any{"completed": true, "owner": uuid.NewString()})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid updates"}`, rec.Body.String())

		got := decodeObject(t, s.do(t, http.MethodGet, path, ada.Token, nil))
		assert.Equal(t, false, got["completed"])
		assert.Equal(t, ada.ID, got["owner"])
	})

	t.Run("update", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, path, ada.Token, map[string]any{"completed": true, "description": "fold laundry"})
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeObject(t, rec)
		assert.Equal(t, true, got["completed"])
		assert.Equal(t, "fold laundry", got["description"])
	})

	t.Run("update validation", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, path, ada.Token, map[string]any{"description": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete returns the task", func(t *testing.T) {
		rec := s.do(t, http.MethodDelete, path, ada.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, task["id"], decodeObject(t, rec)["id"])

		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, ada.Token, nil).Code)
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, ada.Token, nil).Code)
	})
}

func TestListTasks(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ada := s.signup(t, "Ada", "ada@example.com")

	s.createTask(t, ada.Token, "a", false)
	s.createTask(t, ada.Token, "b", true)
	s.createTask(t, ada.Token, "c", false)
	s.createTask(t, ada.Token, "d", true)
	s.createTask(t, ada.Token, "e", false)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"insertion order", "", []string{"a", "b", "c", "d", "e"}},
		{"completed", "?completed=true", []string{"b", "d"}},
		{"incomplete", "?completed=false", []string{"a", "c", "e"}},
		{"non-true means incomplete", "?completed=yes", []string{"a", "c", "e"}},
		{"page", "?limit=2&skip=2", []string{"c", "d"}},
		{"skip past end", "?skip=10", []string{}},
		{"bad paging ignored", "?limit=-1&skip=abc", []string{"a", "b", "c", "d", "e"}},
		{"sort desc", "?sortBy=description_desc", []string{"e", "d", "c", "b", "a"}},
		{"filter sort page", "?completed=false&sortBy=description_desc&limit=2", []string{"e", "c"}},
		{"unknown sort field ignored", "?sortBy=owner_desc", []string{"a", "b", "c", "d", "e"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/tasks"+tc.query, ada.Token, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want, descriptions(decodeList(t, rec)))
		})
	}

	t.Run("empty list is an array", func(t *testing.T) {
		bob := s.signup(t, "Bob", "bob@example.com")
		rec := s.do(t, http.MethodGet, "/tasks", bob.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}
