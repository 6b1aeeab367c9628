// Package books provides database operations for the book catalog.
//
// The repository owns the catalog invariant: a book is never persisted
// with a blank title or author, whichever handler the write comes from.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(123)
package books

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// MaxFieldLength is the maximum length of a title or author, in characters.
const MaxFieldLength = 255

var (
	ErrBookNotFound = errors.New("book not found")
	ErrInvalidBook  = errors.New("invalid book")
	// ErrFieldTooLong is a specific ErrInvalidBook.
	ErrFieldTooLong = fmt.Errorf("%w: field too long", ErrInvalidBook)
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListBooks returns every book in id order. The result is never nil.
func (r *Repository) ListBooks() ([]entities.Book, error) {
	books := make([]entities.Book, 0)
	if err := r.db.Order("id ASC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}
	return &book, nil
}

// CreateBook persists a new book and sets its ID.
func (r *Repository) CreateBook(book *entities.Book) error {
	if err := validate(book); err != nil {
		return err
	}
	book.ID = 0
	if err := r.db.Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// UpdateBook overwrites title, author and description of an existing book.
func (r *Repository) UpdateBook(book *entities.Book) error {
	if err := validate(book); err != nil {
		return err
	}

	result := r.db.Model(&entities.Book{ID: book.ID}).Updates(map[string]interface{}{
		"title":       book.Title,
		"author":      book.Author,
		"description": book.Description,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update book %d: %w", book.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// DeleteBook removes a book permanently. Its id is never handed out again.
func (r *Repository) DeleteBook(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

func validate(book *entities.Book) error {
	if strings.TrimSpace(book.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidBook)
	}
	if strings.TrimSpace(book.Author) == "" {
		return fmt.Errorf("%w: author is required", ErrInvalidBook)
	}
	if utf8.RuneCountInString(book.Title) > MaxFieldLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrFieldTooLong, MaxFieldLength)
	}
	if utf8.RuneCountInString(book.Author) > MaxFieldLength {
		return fmt.Errorf("%w: author exceeds %d characters", ErrFieldTooLong, MaxFieldLength)
	}
	return nil
}
