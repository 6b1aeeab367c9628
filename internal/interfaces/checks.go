package interfaces

// This file contains compile-time interface implementation checks.
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.BookStore = (*books.Repository)(nil)
var _ auth.UserRepository = (*users.Repository)(nil)
var _ audit.EventStore = (*auditrepo.Repository)(nil)
var _ http.HealthChecker = (*database.Database)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ http.AuditService = (*audit.Service)(nil)
var _ auth.AuthAuditor = (*audit.Service)(nil)
var _ scheduler.AuditEventCleaner = (*audit.Service)(nil)
