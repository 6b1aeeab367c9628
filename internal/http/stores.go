package http

import (
	"context"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// BookStore is the catalog persistence used by the API and web controllers.
// Implemented by books.Repository.
type BookStore interface {
	ListBooks() ([]entities.Book, error)
	GetBookByID(id uint) (*entities.Book, error)
	CreateBook(book *entities.Book) error
	UpdateBook(book *entities.Book) error
	DeleteBook(id uint) error
}

// BookAuditor records successful book mutations.
type BookAuditor interface {
	LogBook(userID uint, action string, bookID uint, title string)
}

// AuditService is the audit trail as seen by the router: it records book
// and auth events and lists recent ones. Implemented by audit.Service.
type AuditService interface {
	BookAuditor
	LogAuth(userID uint, action string, ipAddr, userAgent string, success bool)
	RecentEvents(limit int) ([]entities.AuditEvent, error)
}

// HealthChecker reports whether the database is reachable.
// Implemented by database.Database.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
