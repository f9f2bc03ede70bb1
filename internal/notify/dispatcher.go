package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/task-manager-api/internal/redact"
)

// Common errors returned by the Dispatcher
var (
	ErrQueueClosed = errors.New("notification queue is closed")
	ErrQueueFull   = errors.New("notification queue is full")
)

// Notifier sends account emails without blocking the caller.
type Notifier interface {
	NotifyWelcome(ctx context.Context, name, email string)
	NotifyCancellation(ctx context.Context, name, email string)
}

// DispatcherConfig holds configuration options for the dispatcher.
type DispatcherConfig struct {
	// QueueSize bounds the number of undelivered messages. Defaults to 100.
	QueueSize int
	// WorkerCount determines how many concurrent senders run. Defaults to 1.
	WorkerCount int
	// SendTimeout bounds a single delivery attempt. Defaults to 15s.
	SendTimeout time.Duration
}

// Dispatcher is a bounded message queue drained by a pool of workers.
type Dispatcher struct {
	mailer Mailer
	cfg    DispatcherConfig
	logger *slog.Logger

	mu     sync.RWMutex
	queue  chan Message
	closed bool

	wg sync.WaitGroup
}

// Ensure Dispatcher implements Notifier interface
var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher. Call Start before enqueueing.
func NewDispatcher(mailer Mailer, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.WorkerCount < 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", cfg.WorkerCount,
			"default_count", 1)
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}

	return &Dispatcher{
		mailer: mailer,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "notify_dispatcher")),
		queue:  make(chan Message, cfg.QueueSize),
	}
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	d.logger.Info("starting notification workers", "worker_count", d.cfg.WorkerCount)
	for i := 0; i < d.cfg.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	log := d.logger.With("worker_id", id)
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
		err := d.mailer.Send(ctx, msg)
		cancel()

		if err != nil {
			log.Error("failed to send email",
				slog.String("subject", msg.Subject),
				slog.String("error", redact.Error(err)))
			continue
		}
		log.Debug("email sent", slog.String("subject", msg.Subject))
	}
}

// Enqueue adds msg to the queue without blocking.
func (d *Dispatcher) Enqueue(msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrQueueClosed
	}

	select {
	case d.queue <- msg:
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(d.queue))
	}
}

// Stop closes the queue and waits for the workers to deliver what is left,
// or for ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("notification workers stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for notification workers: %w", ctx.Err())
	}
}

// NotifyWelcome queues the signup email.
func (d *Dispatcher) NotifyWelcome(ctx context.Context, name, email string) {
	d.notify(ctx, WelcomeMessage(name, email))
}

// NotifyCancellation queues the account deletion email.
func (d *Dispatcher) NotifyCancellation(ctx context.Context, name, email string) {
	d.notify(ctx, CancellationMessage(name, email))
}

func (d *Dispatcher) notify(ctx context.Context, msg Message) {
	if err := d.Enqueue(msg); err != nil {
		d.logger.WarnContext(ctx, "dropping email",
			slog.String("subject", msg.Subject),
			slog.String("error", err.Error()))
	}
}
