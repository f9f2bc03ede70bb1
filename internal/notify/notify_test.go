package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// recordingMailer captures every message it is asked to send.
type recordingMailer struct {
	mu      sync.Mutex
	sent    []Message
	err     error
	release chan struct{}
}

func (m *recordingMailer) Send(ctx context.Context, msg Message) error {
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

func TestMessages(t *testing.T) {
	t.Parallel()

	welcome := WelcomeMessage("Ada", "ada@example.com")
	assert.Equal(t, "ada@example.com", welcome.To)
	assert.Equal(t, "Welcome to task manager app", welcome.Subject)
	assert.Contains(t, welcome.Text, "Welcome to the app, Ada.")

	bye := CancellationMessage("Ada", "ada@example.com")
	assert.Equal(t, "Cancellation confirmation from Task manager app", bye.Subject)
	assert.Contains(t, bye.Text, "Hi Ada,")
}

func TestDispatcherDeliversAndDrainsOnStop(t *testing.T) {
	t.Parallel()

	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, DispatcherConfig{QueueSize: 10, WorkerCount: 2}, discardLogger())
	d.Start()

	d.NotifyWelcome(context.Background(), "Ada", "ada@example.com")
	d.NotifyCancellation(context.Background(), "Bob", "bob@example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	subjects := map[string]string{}
	for _, msg := range mailer.messages() {
		subjects[msg.To] = msg.Subject
	}
	assert.Equal(t, map[string]string{
		"ada@example.com": WelcomeSubject,
		"bob@example.com": CancellationSubject,
	}, subjects)

	assert.ErrorIs(t, d.Enqueue(WelcomeMessage("x", "x@example.com")), ErrQueueClosed)
	assert.NoError(t, d.Stop(ctx), "stopping twice is harmless")
}

func TestNewDispatcherDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		workerCount int
		wantWorkers int
		wantWarning bool
	}{
		{"unset uses default quietly", 0, 1, false},
		{"negative warns", -3, 1, true},
		{"explicit", 4, 4, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			log := slog.New(slog.NewTextHandler(&logs, nil))

			d := NewDispatcher(&recordingMailer{}, DispatcherConfig{WorkerCount: tc.workerCount}, log)
			assert.Equal(t, tc.wantWorkers, d.cfg.WorkerCount)
			assert.Equal(t, 100, d.cfg.QueueSize)
			assert.Equal(t, 15*time.Second, d.cfg.SendTimeout)

			if tc.wantWarning {
				assert.Contains(t, logs.String(), "invalid worker count")
			} else {
				assert.NotContains(t, logs.String(), "level=WARN")
			}
		})
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	t.Parallel()

	mailer := &recordingMailer{release: make(chan struct{})}
	d := NewDispatcher(mailer, DispatcherConfig{QueueSize: 1, WorkerCount: 1}, discardLogger())

	// Workers are not started, so the single slot fills up.
	require.NoError(t, d.Enqueue(WelcomeMessage("a", "a@example.com")))
	assert.ErrorIs(t, d.Enqueue(WelcomeMessage("b", "b@example.com")), ErrQueueFull)

	// Notify drops silently instead of failing the caller.
	d.NotifyWelcome(context.Background(), "c", "c@example.com")

	d.Start()
	close(mailer.release)
	require.NoError(t, d.Stop(context.Background()))
	assert.Len(t, mailer.messages(), 1)
}

func TestDispatcherSurvivesMailerErrors(t *testing.T) {
	t.Parallel()

	mailer := &recordingMailer{err: errors.New("smtp down")}
	d := NewDispatcher(mailer, DispatcherConfig{QueueSize: 5, WorkerCount: 1}, discardLogger())
	d.Start()

	d.NotifyWelcome(context.Background(), "a", "a@example.com")
	d.NotifyWelcome(context.Background(), "b", "b@example.com")
	require.NoError(t, d.Stop(context.Background()))

	assert.Len(t, mailer.messages(), 2)
}

func TestDispatcherStopTimeout(t *testing.T) {
	t.Parallel()

	mailer := &recordingMailer{release: make(chan struct{})}
	d := NewDispatcher(mailer, DispatcherConfig{QueueSize: 5, WorkerCount: 1}, discardLogger())
	d.Start()
	d.NotifyWelcome(context.Background(), "a", "a@example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Stop(ctx), context.DeadlineExceeded)

	close(mailer.release)
}

// fakeSendGrid records requests and returns a canned response.
type fakeSendGrid struct {
	mu     sync.Mutex
	emails []*mail.SGMailV3
	status int
	err    error
}

func (f *fakeSendGrid) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, email)
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

func TestSendGridMailer(t *testing.T) {
	t.Parallel()

	client := &fakeSendGrid{status: 202}
	m := NewSendGridMailer(client, "tasks@example.com", "Task Manager", discardLogger())

	require.NoError(t, m.Send(context.Background(), WelcomeMessage("Ada", "ada@example.com")))
	require.Len(t, client.emails, 1)

	email := client.emails[0]
	assert.Equal(t, "tasks@example.com", email.From.Address)
	assert.Equal(t, WelcomeSubject, email.Subject)
	require.Len(t, email.Personalizations, 1)
	assert.Equal(t, "ada@example.com", email.Personalizations[0].To[0].Address)
	require.NotEmpty(t, email.Content)
	assert.Equal(t, "text/plain", email.Content[0].Type)
}

func TestSendGridMailerRejected(t *testing.T) {
	t.Parallel()

	client := &fakeSendGrid{status: 401}
	m := NewSendGridMailer(client, "tasks@example.com", "Task Manager", discardLogger())

	err := m.Send(context.Background(), WelcomeMessage("Ada", "ada@example.com"))
	assert.ErrorIs(t, err, ErrDeliveryFailed)
}

func TestSendGridMailerCircuitOpens(t *testing.T) {
	t.Parallel()

	client := &fakeSendGrid{err: errors.New("connection refused")}
	m := NewSendGridMailer(client, "tasks@example.com", "Task Manager", discardLogger())

	for i := 0; i < 5; i++ {
		assert.Error(t, m.Send(context.Background(), WelcomeMessage("a", "a@example.com")))
	}

	err := m.Send(context.Background(), WelcomeMessage("a", "a@example.com"))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Len(t, client.emails, 5, "an open breaker does not call the provider")
}

func TestNewMailer(t *testing.T) {
	t.Parallel()

	_, isLog := NewMailer(config.EmailConfig{}, discardLogger()).(*LogMailer)
	assert.True(t, isLog)

	_, isSendGrid := NewMailer(config.EmailConfig{
		SendGridAPIKey: "SG.key",
		FromAddress:    "tasks@example.com",
	}, discardLogger()).(*SendGridMailer)
	assert.True(t, isSendGrid)

	assert.NoError(t, NewLogMailer(discardLogger()).Send(context.Background(), WelcomeMessage("a", "a@example.com")))
}
