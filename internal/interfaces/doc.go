// Package interfaces documents the seams between the catalog's layers.
//
// # Data Access Interfaces
//
//   - http.BookStore: book persistence (implemented by database/books.Repository)
//   - auth.UserRepository: account persistence (database/users.Repository)
//   - audit.EventStore: audit event persistence (database/audit.Repository)
//   - http.HealthChecker: database reachability (database.Database)
//
// # Audit Interfaces
//
//   - http.AuditService and http.BookAuditor: book events and the audit endpoint
//   - auth.AuthAuditor: login, logout and registration events
//   - scheduler.AuditEventCleaner: retention pruning
//
// All of them are implemented by audit.Service.
//
// # Swapping the Store
//
// Handlers depend only on http.BookStore. An alternative backend needs the
// five methods below and must keep the same error contract:
// books.ErrBookNotFound for a missing id, and errors wrapping
// books.ErrInvalidBook for blank or over-long title and author.
//
//	ListBooks() ([]entities.Book, error)
//	GetBookByID(id uint) (*entities.Book, error)
//	CreateBook(book *entities.Book) error
//	UpdateBook(book *entities.Book) error
//	DeleteBook(id uint) error
//
// Add a compile-time check for the new type in checks.go.
package interfaces
