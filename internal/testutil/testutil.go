package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"library/internal/db"
	"library/internal/model"
)

// SQLiteURI returns a connection string for a fresh database file in a test temp dir.
func SQLiteURI(t *testing.T, name string) string {
	t.Helper()
	return "sqlite:///" + filepath.Join(t.TempDir(), name+".db")
}

// CountAccounts counts live accounts holding role.
func CountAccounts(t *testing.T, gormDB *gorm.DB, role model.Role) int64 {
	t.Helper()
	var count int64
	if err := gormDB.Model(&model.Account{}).Where("role = ?", role).Count(&count).Error; err != nil {
		t.Fatalf("count accounts: %v", err)
	}
	return count
}

// OpenSQLite opens a file backed SQLite database with every model migrated.
// The pool is closed via t.Cleanup.
func OpenSQLite(t *testing.T, name string) *gorm.DB {
	t.Helper()
	gormDB, err := db.Open(context.Background(), SQLiteURI(t, name), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gormDB) })

	if err := gormDB.AutoMigrate(model.Models()...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gormDB
}
