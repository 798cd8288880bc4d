package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultLoanPeriod is how long a member may keep a borrowed copy.
const DefaultLoanPeriod = 14 * 24 * time.Hour

// Loan records one copy of a book lent to an account.
type Loan struct {
	ID         uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	AccountID  uuid.UUID      `json:"account_id" gorm:"type:char(36);not null;index"`
	BookID     uuid.UUID      `json:"book_id" gorm:"type:char(36);not null;index"`
	BorrowedAt time.Time      `json:"borrowed_at" gorm:"not null"`
	DueAt      time.Time      `json:"due_at" gorm:"not null;index"`
	ReturnedAt *time.Time     `json:"returned_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID and the due date before creating the record.
func (l *Loan) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.BorrowedAt.IsZero() {
		l.BorrowedAt = time.Now()
	}
	if l.DueAt.IsZero() {
		l.DueAt = l.BorrowedAt.Add(DefaultLoanPeriod)
	}
	return nil
}

// Models lists every table the service owns, in creation order.
func Models() []interface{} {
	return []interface{}{
		&Account{},
		&Book{},
		&Loan{},
	}
}
