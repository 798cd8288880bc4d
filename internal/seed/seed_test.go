package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "library/internal/errors"
	"library/internal/model"
	"library/internal/repository"
	"library/internal/testutil"
)

func TestLoad_Embedded(t *testing.T) {
	data, err := Load("")
	require.NoError(t, err)

	assert.NotEmpty(t, data.Members)
	assert.NotEmpty(t, data.Books)
	assert.NotEmpty(t, data.Loans)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"books":[{"title":"Kindred","author":"Octavia E. Butler","isbn":"9780807083697","copies":1}]}`), 0o600))

	data, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, data.Members)
	require.Len(t, data.Books, 1)
	assert.Equal(t, "Kindred", data.Books[0].Title)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSeeder_RunIsIdempotent(t *testing.T) {
	gormDB := testutil.OpenSQLite(t, "seed")
	seeder := New(gormDB, zap.NewNop().Sugar())
	ctx := context.Background()

	data, err := Load("")
	require.NoError(t, err)

	first, err := seeder.Run(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, len(data.Members), first.AccountsCreated)
	assert.Equal(t, len(data.Books), first.BooksCreated)
	assert.Equal(t, len(data.Loans), first.LoansCreated)

	second, err := seeder.Run(ctx, Options{})
	require.NoError(t, err)
	assert.Zero(t, second.AccountsCreated)
	assert.Zero(t, second.BooksCreated)
	assert.Zero(t, second.LoansCreated)
	assert.Equal(t, len(data.Members)+len(data.Books)+len(data.Loans), second.Skipped)

	assert.Equal(t, int64(len(data.Members)), testutil.CountAccounts(t, gormDB, model.RoleMember))

	// Sample loans never create librarians.
	assert.Zero(t, testutil.CountAccounts(t, gormDB, model.RoleLibrarian))
}

func TestSeeder_LoansReduceAvailability(t *testing.T) {
	gormDB := testutil.OpenSQLite(t, "loans")
	seeder := New(gormDB, zap.NewNop().Sugar())
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"members": [
			{"name": "Ada", "email": "ada@example.com", "password": "pw", "approved": true},
			{"name": "Alan", "email": "alan@example.com", "password": "pw", "approved": true}
		],
		"books": [{"title": "Kindred", "author": "Octavia E. Butler", "isbn": "9780807083697", "copies": 1}],
		"loans": [
			{"email": "ada@example.com", "isbn": "9780807083697", "days_ago": 30},
			{"email": "alan@example.com", "isbn": "9780807083697", "days_ago": 1},
			{"email": "nobody@example.com", "isbn": "9780807083697", "days_ago": 1}
		]
	}`), 0o600))

	res, err := seeder.Run(ctx, Options{File: path})
	require.NoError(t, err)
	assert.Equal(t, 1, res.LoansCreated)
	assert.Equal(t, 2, res.Skipped)

	var overdue int64
	require.NoError(t, gormDB.Model(&model.Loan{}).Where("returned_at IS NULL AND due_at < ?", time.Now()).Count(&overdue).Error)
	assert.Equal(t, int64(1), overdue)

	book, err := repository.NewBookRepository(gormDB).FindByISBN(ctx, "9780807083697")
	require.NoError(t, err)
	assert.Equal(t, 0, book.AvailableCopies)
}

func TestSeeder_Fake(t *testing.T) {
	gormDB := testutil.OpenSQLite(t, "fake")
	seeder := New(gormDB, zap.NewNop().Sugar())

	res, err := seeder.Run(context.Background(), Options{Fake: 5})
	require.NoError(t, err)

	data, err := Load("")
	require.NoError(t, err)
	assert.Greater(t, res.AccountsCreated, len(data.Members))
	assert.Greater(t, res.BooksCreated, len(data.Books))
}

func TestSeeder_BadFile(t *testing.T) {
	gormDB := testutil.OpenSQLite(t, "bad")
	seeder := New(gormDB, zap.NewNop().Sugar())

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := seeder.Run(context.Background(), Options{File: path})
	assert.ErrorIs(t, err, apperrors.ErrSeedFailed)
}
