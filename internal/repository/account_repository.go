package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"library/internal/model"
)

// AccountRepository defines account persistence operations.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindFirstByRole(ctx context.Context, role model.Role) (*model.Account, error)
	FindByEmailOrCreate(ctx context.Context, account *model.Account) (*model.Account, bool, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo AccountRepository) error) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new account.
func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// FindByEmail finds an account by email.
func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindFirstByRole returns the oldest account holding role.
func (r *accountRepository) FindFirstByRole(ctx context.Context, role model.Role) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("created_at").First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByEmailOrCreate finds an account by email or creates it if it doesn't exist.
// created reports whether a row was inserted.
func (r *accountRepository) FindByEmailOrCreate(ctx context.Context, account *model.Account) (*model.Account, bool, error) {
	var existing model.Account
	err := r.db.WithContext(ctx).Where("email = ?", account.Email).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	// Account doesn't exist, create it
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, false, err
	}
	return account, true, nil
}

// WithTransaction executes a function within a database transaction.
func (r *accountRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo AccountRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &accountRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
