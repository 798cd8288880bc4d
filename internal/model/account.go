package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"library/internal/auth"
)

// Role is the access level of an account.
type Role string

const (
	RoleLibrarian Role = "librarian"
	RoleMember    Role = "member"
)

// Account represents a librarian or member of the library.
type Account struct {
	ID           uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string         `json:"name" gorm:"size:255;not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Role         Role           `json:"role" gorm:"type:varchar(20);not null;default:'member';index"`
	Approved     bool           `json:"approved" gorm:"default:false;index"`
	PasswordHash string         `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsLibrarian reports whether the account has librarian privileges.
func (a *Account) IsLibrarian() bool {
	return a.Role == RoleLibrarian
}

// SetPassword stores a derived hash of the given password.
func (a *Account) SetPassword(password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (a *Account) CheckPassword(password string) bool {
	return auth.CheckPassword(a.PasswordHash, password) == nil
}
