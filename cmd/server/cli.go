package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/platform/migrations"
	"github.com/spf13/cobra"
)

// configLoader loads the configuration for a command.
type configLoader func() (*config.Config, error)

// newRootCommand creates the root cobra command with global flags
func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "task-manager-api",
		Short: "A multi-user task manager REST API",
		Long: `task-manager-api serves the task manager REST API.

CONFIGURATION:
  Settings come from ./config.yaml (or --config) and TASKMGR_* environment
  variables, which take precedence. Required:
    TASKMGR_DATABASE_URL                   PostgreSQL URL, or a file path for sqlite
    TASKMGR_AUTH_JWT_SECRET                at least 32 characters

  Common:
    TASKMGR_DATABASE_DRIVER                postgres (default) or sqlite
    TASKMGR_SERVER_PORT                    listen port (default: 8080)
    TASKMGR_SERVER_LOG_LEVEL               debug, info, warn, error (default: info)
    TASKMGR_EMAIL_SENDGRID_API_KEY         enables email delivery; emails are logged otherwise`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default: ./config.yaml if present)")

	load := func() (*config.Config, error) {
		if configPath != "" {
			return config.LoadFile(configPath)
		}
		return config.Load()
	}

	root.AddCommand(newServeCommand(load), newMigrateCommand(load))
	return root
}

func newServeCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply pending migrations and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, log, err := bootstrap(load)
			if err != nil {
				return err
			}

			db, dialect, err := setupAppDatabase(ctx, cfg.Database, log)
			if err != nil {
				return err
			}

			if err := migrateUp(ctx, db, cfg.Database.Driver, log); err != nil {
				_ = db.Close()
				return err
			}

			app, err := newApplication(cfg, log, db, dialect)
			if err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run(ctx)
		},
	}
}

func newMigrateCommand(load configLoader) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	// withMigrator opens the configured database for a migrate subcommand.
	withMigrator := func(fn func(ctx context.Context, cmd *cobra.Command, m *migrations.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(load)
			if err != nil {
				return err
			}
			ctx := logger.WithLogger(cmd.Context(), log)

			db, _, err := setupAppDatabase(ctx, cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			m, err := migrations.New(db, cfg.Database.Driver)
			if err != nil {
				return err
			}
			return fn(ctx, cmd, m)
		}
	}

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *migrations.Migrator) error {
				n, err := m.Up(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *migrations.Migrator) error {
				if err := m.Down(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "rolled back 1 migration")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *migrations.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return err
				}
				return writeStatus(cmd, statuses)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *migrations.Migrator) error {
				v, err := m.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}),
		},
	)

	return migrate
}

func writeStatus(cmd *cobra.Command, statuses []migrations.Status) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tFILE\tAPPLIED")
	for _, s := range statuses {
		fmt.Fprintf(tw, "%d\t%s\t%t\n", s.Version, s.File, s.Applied)
	}
	return tw.Flush()
}

// bootstrap loads the configuration and sets up logging.
func bootstrap(load configLoader) (*config.Config, *slog.Logger, error) {
	cfg, err := load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("email_delivery", cfg.Email.SendGridAPIKey != ""))

	return cfg, log, nil
}
