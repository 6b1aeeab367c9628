// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── books/           # Book catalog CRUD
//	├── users/           # User accounts
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./bookshelf.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	usersRepo := users.NewRepository(db.DB)
//
//	book, err := booksRepo.GetBookByID(123)
//
// # Interface Implementations
//
//   - books.Repository: implements http.BookStore
//   - users.Repository: implements auth.UserRepository
//   - audit.Repository: implements audit.EventStore
//
// The sessions table used by scs is created by auth.NewSessionManager on the
// same connection, not by AutoMigrate.
package database
