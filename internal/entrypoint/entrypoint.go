package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/users"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/metrics"
	"github.com/mrlokans/bookshelf/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -9 cannot be caught, so SIGINT and SIGTERM are enough
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// resolveCSRFSecret decodes a hex secret, falls back to the raw bytes of a
// non-hex one and generates a fresh secret when none is configured.
func resolveCSRFSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(generated)
}

// App holds the wired application ready to be served.
type App struct {
	Router       http_controllers.RouterConfig
	Audit        *audit.Service
	AuditCleanup *scheduler.AuditCleanupScheduler
}

// NewApp wires repositories, auth and audit on top of an open database.
// Audit events past the retention window are pruned once here; the
// cleanup scheduler keeps doing it while the server runs.
func NewApp(cfg *config.Config, db *database.Database, version string) (*App, error) {
	auditService := audit.NewService(auditrepo.NewRepository(db.DB))

	cleanup := scheduler.NewAuditCleanupScheduler(auditService, cfg.Audit.CleanupSchedule, cfg.Audit.Retention)
	if _, err := cleanup.RunNow(); err != nil {
		log.Printf("Failed to prune audit events: %v", err)
	}

	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	var csrfSecret []byte
	if cfg.Auth.CSRFEnabled {
		csrfSecret, err = resolveCSRFSecret(cfg.Auth.SessionSecret)
		if err != nil {
			return nil, err
		}
	} else {
		log.Printf("WARNING: CSRF protection is disabled")
	}

	if hasUsers, err := authService.HasUsers(); err == nil && !hasUsers {
		log.Printf("No users found. Visit /register or run 'create-user' to create an account.")
	}

	routerCfg := http_controllers.RouterConfig{
		Books:          books.NewRepository(db.DB),
		Database:       db,
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthMiddleware: auth.NewMiddleware(authService, sessionManager),
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Audit:          auditService,
		AllowedOrigin:  cfg.CORS.AllowedOrigin,
		Version:        version,
	}
	if cfg.Metrics.Enabled {
		routerCfg.Metrics = metrics.New()
	}

	return &App{Router: routerCfg, Audit: auditService, AuditCleanup: cleanup}, nil
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookshelf v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	app, err := NewApp(cfg, db, version)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.AuditCleanup.Start(); err != nil {
		log.Fatalf("Failed to start audit cleanup: %v", err)
	}

	if cfg.CORS.AllowedOrigin != "" {
		log.Printf("Cross-origin requests allowed from %s", cfg.CORS.AllowedOrigin)
	}

	handler := http_controllers.NewHandler(app.Router)

	// Pending audit writes must land before the database is closed.
	onShutdown := func(ctx context.Context) {
		app.AuditCleanup.Stop()
		app.Audit.Wait()
	}

	Serve(handler, cfg, onShutdown)
}
