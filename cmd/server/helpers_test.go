package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/notify"
	"github.com/phrazzld/task-manager-api/internal/platform/sqlite"
	"github.com/phrazzld/task-manager-api/internal/testdb"
	"github.com/stretchr/testify/require"
)

// recordingMailer captures delivered messages.
type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.sent...)
}

type testServer struct {
	app    *application
	router http.Handler
	mailer *recordingMailer
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 0, LogLevel: "debug", ShutdownTimeoutSeconds: 1},
		Database: config.DatabaseConfig{
			Driver:       config.DriverSQLite,
			URL:          "unused",
			MaxOpenConns: 1,
		},
		Auth: config.AuthConfig{
			JWTSecret:  strings.Repeat("k", 32),
			BcryptCost: 4,
		},
		Email: config.EmailConfig{
			FromAddress: "noreply@example.com",
			FromName:    "Task Manager",
			QueueSize:   16,
			WorkerCount: 1,
		},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mailer := &recordingMailer{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := newApplicationWithMailer(testConfig(), log, testdb.NewSQLite(t), sqlite.Dialect{}, mailer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.dispatcher.Stop(context.Background()) })

	return &testServer{app: app, router: app.setupRouter(), mailer: mailer}
}

// do sends a JSON request. body may be nil, a string sent verbatim, or a
// value to marshal.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// upload posts content as the multipart field "avatar".
func (s *testServer) upload(t *testing.T, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type session struct {
	ID    string
	Token string
}

type authBody struct {
	User  map[string]any `json:"user"`
	Token string         `json:"token"`
}

func (s *testServer) signup(t *testing.T, name, email string) session {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/users", "", map[string]any{
		"name": name, "email": email, "password": "s3cretpass", "age": 30,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body authBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return session{ID: body.User["id"].(string), Token: body.Token}
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email": email, "password": "s3cretpass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeObject(t, rec)["token"].(string)
}

func (s *testServer) createTask(t *testing.T, token, description string, completed bool) map[string]any {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/tasks", token, map[string]any{
		"description": description, "completed": completed,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeObject(t, rec)
}

func decodeObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var v []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func descriptions(tasks []map[string]any) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task["description"].(string))
	}
	return out
}
