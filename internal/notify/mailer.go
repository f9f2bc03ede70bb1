package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sony/gobreaker"
)

// ErrDeliveryFailed is returned when the mail provider rejects a message.
var ErrDeliveryFailed = errors.New("email delivery failed")

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer returns a SendGridMailer when cfg has an API key and a
// LogMailer otherwise.
func NewMailer(cfg config.EmailConfig, logger *slog.Logger) Mailer {
	if cfg.SendGridAPIKey == "" {
		logger.Info("no SendGrid API key configured, emails will only be logged")
		return NewLogMailer(logger)
	}
	return NewSendGridMailer(sendgrid.NewSendClient(cfg.SendGridAPIKey), cfg.FromAddress, cfg.FromName, logger)
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With(slog.String("component", "log_mailer"))}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "email not sent, no provider configured",
		slog.String("subject", msg.Subject))
	return nil
}

// sendGridClient is the part of *sendgrid.Client the mailer uses.
type sendGridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer delivers messages through the SendGrid v3 API. Calls go
// through a circuit breaker so an unavailable provider fails fast.
type SendGridMailer struct {
	client  sendGridClient
	from    *mail.Email
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

// NewSendGridMailer creates a SendGridMailer sending as fromName <fromAddress>.
func NewSendGridMailer(client sendGridClient, fromAddress, fromName string, logger *slog.Logger) *SendGridMailer {
	st := gobreaker.Settings{
		Name:        "SendGrid",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &SendGridMailer{
		client:  client,
		from:    mail.NewEmail(fromName, fromAddress),
		cb:      gobreaker.NewCircuitBreaker(st),
		timeout: 10 * time.Second,
	}
}

// Send implements Mailer.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	email := mail.NewSingleEmail(m.from, msg.Subject, mail.NewEmail(msg.ToName, msg.To), msg.Text, "")

	_, err := m.cb.Execute(func() (interface{}, error) {
		resp, err := m.client.SendWithContext(ctx, email)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("%w: status %d", ErrDeliveryFailed, resp.StatusCode)
		}
		return resp, nil
	})
	return err
}
