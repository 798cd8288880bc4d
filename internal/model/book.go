package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book represents a title in the catalogue and how many copies the library holds.
type Book struct {
	ID              uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Title           string         `json:"title" gorm:"size:255;not null;index"`
	Author          string         `json:"author" gorm:"size:255;not null;index"`
	ISBN            string         `json:"isbn" gorm:"column:isbn;uniqueIndex;size:20;not null"`
	PublishedYear   int            `json:"published_year"`
	TotalCopies     int            `json:"total_copies" gorm:"not null;default:1"`
	AvailableCopies int            `json:"available_copies" gorm:"not null;default:1"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
