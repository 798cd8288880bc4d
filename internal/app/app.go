package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"library/internal/cache"
	"library/internal/config"
	"library/internal/db"
	apperrors "library/internal/errors"
	"library/internal/handler"
	"library/internal/migrations"
	"library/internal/model"
	"library/internal/repository"
	"library/internal/router"
	"library/internal/seed"
	"library/internal/service"
)

// Version is reported by the API index.
const Version = "1.0.0"

const (
	schemaAttempts   = 5
	schemaRetryDelay = 50 * time.Millisecond
)

// Command is an operator task invoked by name from the CLI.
type Command func(ctx context.Context, args []string) error

type command struct {
	short string
	run   Command
}

// App is the configured application handle.
type App struct {
	Config *config.Config
	Echo   *echo.Echo
	DB     *gorm.DB
	// Migrator is nil for in-memory SQLite, which golang-migrate cannot target.
	Migrator *migrations.Migrator
	Cache    *cache.Client
	Logger   *zap.SugaredLogger

	commands map[string]command
}

type options struct {
	blueprint router.Blueprint
	version   string
}

// Option customises New.
type Option func(*options)

// WithBlueprint replaces the route collection mounted at router.APIPrefix.
func WithBlueprint(bp router.Blueprint) Option {
	return func(o *options) { o.blueprint = bp }
}

// WithVersion overrides the version reported by the default route collection.
func WithVersion(version string) Option {
	return func(o *options) { o.version = version }
}

// New builds a ready-to-serve application. On return the schema exists and
// at least one librarian account is present. The seed command is registered
// but never run here.
func New(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger, opts ...Option) (*App, error) {
	o := &options{version: Version}
	for _, opt := range opts {
		opt(o)
	}
	if o.blueprint == nil {
		o.blueprint = router.DefaultBlueprint(handler.NewIndexHandler(o.version))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.IsDevelopment()

	a := &App{
		Config:   cfg,
		Echo:     e,
		Logger:   logger,
		commands: make(map[string]command),
	}

	gormDB, err := db.Open(ctx, cfg.DatabaseURI, logger)
	if err != nil {
		return nil, err
	}
	a.DB = gormDB

	migrator, err := migrations.New(cfg.DatabaseURI, logger)
	switch {
	case errors.Is(err, apperrors.ErrUnsupportedDatabase):
		logger.Warnw("schema migrations unavailable for this database", "error", err)
	case err != nil:
		_ = a.Close()
		return nil, err
	default:
		a.Migrator = migrator
	}

	a.Cache = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if a.Cache.Enabled() {
		if err := a.Cache.Ping(ctx); err != nil {
			logger.Warnw("redis unreachable, bootstrap continues without the cross-process lock", "addr", cfg.RedisAddr, "error", err)
		}
	}

	healthHandler := handler.NewHealthHandler(handler.PingerFunc(func(ctx context.Context) error {
		return db.Ping(ctx, a.DB)
	}))
	router.Register(e, logger, healthHandler)
	router.Mount(e, router.APIPrefix, o.blueprint)

	a.RegisterCommand("seed", "Load sample members, books and loans", a.runSeed)

	if err := a.bootstrapDatabase(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	logger.Infow("application ready", "env", cfg.Env, "api_prefix", router.APIPrefix)
	return a, nil
}

// bootstrapDatabase creates missing tables and provisions the default librarian.
func (a *App) bootstrapDatabase(ctx context.Context) error {
	if err := a.createSchema(ctx); err != nil {
		return err
	}

	librarians := service.NewLibrarianService(
		repository.NewAccountRepository(a.DB),
		a.Cache,
		a.Config.SeedLockTTL,
		a.Logger,
	)
	if _, err := librarians.EnsureDefaultLibrarian(ctx); err != nil {
		return fmt.Errorf("ensure default librarian: %w", err)
	}
	return nil
}

// createSchema creates missing tables and indexes. A bootstrap racing another
// one on the same database can lose a CREATE between the existence check and
// the statement; the next pass sees the object and skips it.
func (a *App) createSchema(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= schemaAttempts; attempt++ {
		if err = a.DB.WithContext(ctx).AutoMigrate(model.Models()...); err == nil {
			return nil
		}
		if attempt == schemaAttempts {
			break
		}
		a.Logger.Warnw("schema creation failed, retrying", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", apperrors.ErrSchemaCreation, ctx.Err())
		case <-time.After(schemaRetryDelay):
		}
	}
	return fmt.Errorf("%w: %v", apperrors.ErrSchemaCreation, err)
}

// RegisterCommand makes run invocable by name. A later registration replaces an earlier one.
func (a *App) RegisterCommand(name, short string, run Command) {
	a.commands[name] = command{short: short, run: run}
}

// Commands lists the registered command names with their one line descriptions.
func (a *App) Commands() [][2]string {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([][2]string, 0, len(names))
	for _, name := range names {
		out = append(out, [2]string{name, a.commands[name].short})
	}
	return out
}

// RunCommand invokes a registered operator command.
func (a *App) RunCommand(ctx context.Context, name string, args []string) error {
	cmd, ok := a.commands[name]
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownCommand, name)
	}
	a.Logger.Infow("running command", "command", name)
	return cmd.run(ctx, args)
}

func (a *App) runSeed(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	file := flags.String("file", "", "JSON seed file to load instead of the built-in sample")
	fake := flags.Int("fake", 0, "number of generated members and books to add")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", apperrors.ErrSeedFailed, err)
	}
	if *fake < 0 {
		return fmt.Errorf("%w: --fake must not be negative", apperrors.ErrSeedFailed)
	}

	_, err := seed.New(a.DB, a.Logger).Run(ctx, seed.Options{File: *file, Fake: *fake})
	return err
}

// Start serves HTTP on the configured port until Shutdown is called.
func (a *App) Start() error {
	addr := ":" + a.Config.ServerPort
	a.Logger.Infow("http server listening", "addr", addr)
	if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server start: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// Close releases the database pool and the Redis client.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		if err := db.Close(a.DB); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.Cache.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
