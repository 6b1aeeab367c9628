package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/templates"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testAuthConfig = config.Auth{
	SessionLifetime: 24 * time.Hour,
	BcryptCost:      bcrypt.MinCost,
	SecureCookies:   false,
}

type testEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	service  *Service
	sessions *SessionManager
	auditor  *recordingAuditor
}

type recordingAuditor struct {
	events []string
}

func (a *recordingAuditor) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	status := "ok"
	if !success {
		status = "failed"
	}
	a.events = append(a.events, action+":"+status)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&entities.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func setupTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(users.NewRepository(setupTestDB(t)), testAuthConfig)
}

// setupTestEnv wires the auth controller and two guarded probe routes.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}

	svc := NewService(users.NewRepository(db), testAuthConfig)
	sm, err := NewSessionManager(sqlDB, testAuthConfig)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	mw := NewMiddleware(svc, sm)
	auditor := &recordingAuditor{}

	router := gin.New()
	router.SetHTMLTemplate(templates.MustParse())
	router.Use(sm.SessionLoadSave(), mw.Identify())

	NewAuthController(svc, sm, auditor).RegisterRoutes(router)

	router.GET("/api/whoami", mw.RequireAPIAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "username": GetUsername(c)})
	})
	router.GET("/private", mw.RequireLogin(), func(c *gin.Context) {
		c.String(http.StatusOK, "hello %s", GetUsername(c))
	})

	return &testEnv{db: db, router: router, service: svc, sessions: sm, auditor: auditor}
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, cookies...)
}

func (e *testEnv) postJSON(path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, cookies...)
}

func (e *testEnv) mustRegister(t *testing.T, username, password string) *entities.User {
	t.Helper()
	user, err := e.service.Register(username, "", password, password)
	if err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}
	return user
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}
