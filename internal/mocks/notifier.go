package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/task-manager-api/internal/notify"
)

// Notification records one call to MockNotifier.
type Notification struct {
	Kind  string // "welcome" or "cancellation"
	Name  string
	Email string
}

// MockNotifier implements notify.Notifier by recording every call.
type MockNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

var _ notify.Notifier = (*MockNotifier)(nil)

// NotifyWelcome implements the notify.Notifier interface
func (m *MockNotifier) NotifyWelcome(_ context.Context, name, email string) {
	m.record(Notification{Kind: "welcome", Name: name, Email: email})
}

// NotifyCancellation implements the notify.Notifier interface
func (m *MockNotifier) NotifyCancellation(_ context.Context, name, email string) {
	m.record(Notification{Kind: "cancellation", Name: name, Email: email})
}

func (m *MockNotifier) record(n Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
}

// Sent returns a copy of the recorded notifications in call order.
func (m *MockNotifier) Sent() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.sent...)
}
