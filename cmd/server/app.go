package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/notify"
	"github.com/phrazzld/task-manager-api/internal/platform/sqlstore"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// notificationSendTimeout bounds a single email delivery attempt.
const notificationSendTimeout = 15 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	tokenService *auth.TokenService
	userService  service.UserService
	taskService  service.TaskService

	dispatcher *notify.Dispatcher
}

// newApplication wires every dependency on top of an open, migrated database
// and starts the notification workers.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB, dialect sqlstore.Dialect) (*application, error) {
	return newApplicationWithMailer(cfg, logger, db, dialect, notify.NewMailer(cfg.Email, logger))
}

func newApplicationWithMailer(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	dialect sqlstore.Dialect,
	mailer notify.Mailer,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	jwtService, err := auth.NewJWTService(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.userStore = sqlstore.NewUserStore(db, dialect, logger)
	app.taskStore = sqlstore.NewTaskStore(db, dialect, logger)
	app.tokenService = auth.NewTokenService(jwtService, app.userStore)

	app.dispatcher = notify.NewDispatcher(mailer, notify.DispatcherConfig{
		QueueSize:   cfg.Email.QueueSize,
		WorkerCount: cfg.Email.WorkerCount,
		SendTimeout: notificationSendTimeout,
	}, logger)

	app.userService, err = service.NewUserService(
		db,
		app.userStore,
		app.taskStore,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		app.dispatcher,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.dispatcher.Start()
	logger.Info("application initialized")
	return app, nil
}

// cleanup drains pending notifications and closes the database.
func (app *application) cleanup(ctx context.Context) {
	if app.dispatcher != nil {
		if err := app.dispatcher.Stop(ctx); err != nil {
			app.logger.Warn("notification queue not fully drained", slog.String("error", err.Error()))
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
