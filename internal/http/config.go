package http

import (
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/metrics"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Books    BookStore
	Database HealthChecker

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte // CSRF protection is disabled when empty
	SecureCookies  bool

	// Optional audit trail
	Audit AuditService

	// Optional Prometheus metrics, served at /metrics
	Metrics *metrics.Metrics

	// Single allowed cross-origin caller, empty disables CORS headers
	AllowedOrigin string

	// Application info
	Version string
}
