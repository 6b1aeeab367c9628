package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testOrigin   = "http://localhost:3000"
	testPassword = "correct horse"
)

type testEnv struct {
	router http.Handler
	db     *database.Database
	books  *books.Repository
	audit  *audit.Service
	auth   *auth.Service
}

type envOption func(*RouterConfig)

func withCSRF() envOption {
	return func(cfg *RouterConfig) {
		cfg.CSRFSecret = []byte("0123456789abcdef0123456789abcdef")
	}
}

func withMetrics() envOption {
	return func(cfg *RouterConfig) {
		cfg.Metrics = metrics.New()
	}
}

func withoutAudit() envOption {
	return func(cfg *RouterConfig) {
		cfg.Audit = nil
	}
}

// setupTestEnv builds the full router on a fresh SQLite file.
func setupTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "bookshelf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	authCfg := config.Auth{SessionLifetime: time.Hour, BcryptCost: bcrypt.MinCost}
	authService := auth.NewService(users.NewRepository(db.DB), authCfg)
	sessions, err := auth.NewSessionManager(sqlDB, authCfg)
	require.NoError(t, err)

	bookRepo := books.NewRepository(db.DB)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	t.Cleanup(auditService.Wait)

	cfg := RouterConfig{
		Books:          bookRepo,
		Database:       db,
		AuthService:    authService,
		SessionManager: sessions,
		AuthMiddleware: auth.NewMiddleware(authService, sessions),
		Audit:          auditService,
		AllowedOrigin:  testOrigin,
		Version:        "test",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testEnv{
		router: NewHandler(cfg),
		db:     db,
		books:  bookRepo,
		audit:  auditService,
		auth:   authService,
	}
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) request(method, path string, body io.Reader, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(method, path, body), cookies...)
}

func (e *testEnv) requestJSON(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, cookies...)
}

func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, cookies...)
}

// login registers username and returns its session cookie.
func (e *testEnv) login(t *testing.T, username string) *http.Cookie {
	t.Helper()

	_, err := e.auth.Register(username, "", testPassword, testPassword)
	require.NoError(t, err)

	payload, _ := json.Marshal(map[string]string{"username": username, "password": testPassword})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func (e *testEnv) seedBook(t *testing.T, title, author string) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, Author: author}
	require.NoError(t, e.books.CreateBook(book))
	return book
}

func (e *testEnv) auditActions(t *testing.T) []string {
	t.Helper()
	e.audit.Wait()

	events, err := e.audit.RecentEvents(0)
	require.NoError(t, err)

	actions := make([]string, 0, len(events))
	for _, ev := range events {
		actions = append(actions, ev.Action)
	}
	return actions
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
