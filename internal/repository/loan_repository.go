package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"library/internal/model"
)

// LoanRepository defines lending persistence operations.
type LoanRepository interface {
	Create(ctx context.Context, loan *model.Loan) error
	HasOpenLoan(ctx context.Context, accountID, bookID uuid.UUID) (bool, error)
}

type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository.
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *model.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// HasOpenLoan reports whether the account still holds a copy of the book.
func (r *loanRepository) HasOpenLoan(ctx context.Context, accountID, bookID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Loan{}).
		Where("account_id = ? AND book_id = ? AND returned_at IS NULL", accountID, bookID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

