package migrations

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"library/internal/db"
	apperrors "library/internal/errors"
)

//go:embed sql
var sqlFS embed.FS

// Migrator applies the versioned SQL migrations for one database.
type Migrator struct {
	dialect     string
	databaseURL string
	logger      *zap.SugaredLogger
}

// New binds a migrator to a connection string. Nothing is opened until a
// migration command runs.
func New(uri string, logger *zap.SugaredLogger) (*Migrator, error) {
	target, err := db.ParseURI(uri)
	if err != nil {
		return nil, err
	}

	databaseURL, err := migrateURL(target)
	if err != nil {
		return nil, err
	}

	return &Migrator{
		dialect:     target.Dialect,
		databaseURL: databaseURL,
		logger:      logger,
	}, nil
}

// migrateURL converts a driver target into the URL form golang-migrate expects.
func migrateURL(target db.Target) (string, error) {
	switch target.Dialect {
	case db.DialectSQLite:
		if target.Memory {
			return "", fmt.Errorf("%w: migrations need a file backed sqlite database", apperrors.ErrUnsupportedDatabase)
		}
		path, _, _ := strings.Cut(target.DSN, "?")
		return "sqlite3://" + path, nil
	case db.DialectPostgres:
		return target.DSN, nil
	case db.DialectMySQL:
		return "mysql://" + target.DSN + "&multiStatements=true", nil
	default:
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnsupportedDatabase, target.Dialect)
	}
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	src, err := iofs.New(sqlFS, "sql/"+m.dialect)
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	instance, err := migrate.NewWithSourceInstance("iofs", src, m.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w: %v", apperrors.ErrDatabaseUnavailable, err)
	}
	instance.Log = &migrateLogger{logger: m.logger}
	return instance, nil
}

func closeInstance(instance *migrate.Migrate, logger *zap.SugaredLogger) {
	srcErr, dbErr := instance.Close()
	if srcErr != nil || dbErr != nil {
		logger.Warnw("closing migrator", "source_error", srcErr, "database_error", dbErr)
	}
}

// Up applies every pending migration.
func (m *Migrator) Up() error {
	instance, err := m.open()
	if err != nil {
		return err
	}
	defer closeInstance(instance, m.logger)

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down reverts the most recently applied migration.
func (m *Migrator) Down() error {
	instance, err := m.open()
	if err != nil {
		return err
	}
	defer closeInstance(instance, m.logger)

	if err := instance.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version returns the applied schema version. ok is false on a fresh database.
func (m *Migrator) Version() (version uint, dirty bool, ok bool, err error) {
	instance, err := m.open()
	if err != nil {
		return 0, false, false, err
	}
	defer closeInstance(instance, m.logger)

	version, dirty, err = instance.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("migrate version: %w", err)
	}
	return version, dirty, true, nil
}

// Dialect returns the database dialect the migrator is bound to.
func (m *Migrator) Dialect() string {
	return m.dialect
}

type migrateLogger struct {
	logger *zap.SugaredLogger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Infof(strings.TrimRight(format, "\n"), v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}
