package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "library/docs" // swagger docs

	"library/internal/app"
	"library/internal/config"
	apperrors "library/internal/errors"
	"library/internal/logging"
	"library/internal/migrations"
)

const shutdownTimeout = 10 * time.Second

// @title Library API
// @version 1.0
// @description Library management service: members, librarians, books and loans.
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "library",
		Short:         "Library management service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Bootstrap the database and serve the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:                "seed [--file path] [--fake N]",
			Short:              "Load sample members, books and loans",
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
					return a.RunCommand(ctx, "seed", args)
				})
			},
		},
		newDBCmd(),
	)
	return root
}

func newDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Manage schema migrations",
	}

	dbCmd.AddCommand(
		&cobra.Command{
			Use:   "upgrade",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), func(m *migrations.Migrator) error {
					return m.Up()
				})
			},
		},
		&cobra.Command{
			Use:   "downgrade",
			Short: "Revert the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), func(m *migrations.Migrator) error {
					return m.Down()
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), func(m *migrations.Migrator) error {
					version, dirty, ok, err := m.Version()
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
						return nil
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d (dirty=%t)\n", version, dirty)
					return nil
				})
			},
		},
	)
	return dbCmd
}

func setup() (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return nil, nil, err
	}
	logger, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return nil, nil, err
	}
	return cfg, logger, nil
}

// withApp bootstraps the application, runs fn and closes everything again.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Errorw("startup failed", "error", err)
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warnw("close application", "error", err)
		}
	}()

	if err := fn(ctx, a); err != nil {
		logger.Errorw("command failed", "error", err)
		return err
	}
	return nil
}

// withMigrator runs fn against the migration tool bound by the bootstrap.
func withMigrator(ctx context.Context, fn func(m *migrations.Migrator) error) error {
	return withApp(ctx, func(_ context.Context, a *app.App) error {
		if a.Migrator == nil {
			return fmt.Errorf("%w: migrations need a file or server database", apperrors.ErrUnsupportedDatabase)
		}
		return fn(a.Migrator)
	})
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		if a.Config.SwaggerHost != "" {
			a.Logger.Infow("swagger documentation available", "url", a.Config.SwaggerHost+"/swagger/index.html")
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- a.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		a.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
}
