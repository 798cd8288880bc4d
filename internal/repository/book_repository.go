package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"library/internal/model"
)

// BookRepository defines catalogue persistence operations.
type BookRepository interface {
	FindByISBN(ctx context.Context, isbn string) (*model.Book, error)
	FindByISBNOrCreate(ctx context.Context, book *model.Book) (*model.Book, bool, error)
	TakeCopy(ctx context.Context, id uuid.UUID) (bool, error)
}

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository.
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	var book model.Book
	if err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByISBNOrCreate returns the stored book with the same ISBN, inserting book when none exists.
func (r *bookRepository) FindByISBNOrCreate(ctx context.Context, book *model.Book) (*model.Book, bool, error) {
	existing, err := r.FindByISBN(ctx, book.ISBN)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return nil, false, err
	}
	return book, true, nil
}

// TakeCopy decrements the available copies of a book. It reports false when none are left.
func (r *bookRepository) TakeCopy(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Book{}).
		Where("id = ? AND available_copies > 0", id).
		Update("available_copies", gorm.Expr("available_copies - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
