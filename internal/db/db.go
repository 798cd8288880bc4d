package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "library/internal/errors"
)

const slowQueryThreshold = 200 * time.Millisecond

// Open returns a connected GORM DB instance for a URL style connection string.
// Any failure to reach the database is reported as ErrDatabaseUnavailable.
func Open(ctx context.Context, uri string, logger *zap.SugaredLogger) (*gorm.DB, error) {
	target, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch target.Dialect {
	case DialectSQLite:
		dialector = sqlite.Open(target.DSN)
	case DialectPostgres:
		dialector = postgres.Open(target.DSN)
	case DialectMySQL:
		dialector = gormmysql.Open(target.DSN)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(zap.NewStdLog(logger.Desugar()), gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w: %v", target.Dialect, apperrors.ErrDatabaseUnavailable, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w: %v", target.Dialect, apperrors.ErrDatabaseUnavailable, err)
	}
	if target.Dialect == DialectSQLite {
		// go-sqlite3 allows one writer; a single connection avoids SQLITE_BUSY between pool members.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w: %v", target.Dialect, apperrors.ErrDatabaseUnavailable, err)
	}

	logger.Infow("database connected", "dialect", target.Dialect)
	return gormDB, nil
}

// Ping checks that the database still answers.
func Ping(ctx context.Context, gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseUnavailable, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
