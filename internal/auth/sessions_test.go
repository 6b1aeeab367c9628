package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupSessionManager(t *testing.T, cfg config.Auth) *SessionManager {
	t.Helper()

	sqlDB, err := setupTestDB(t).DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}

	sm, err := NewSessionManager(sqlDB, cfg)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func TestNewSessionManager_CookieSettings(t *testing.T) {
	sm := setupSessionManager(t, config.Auth{SessionLifetime: 2 * time.Hour, SecureCookies: true})

	if sm.Cookie.Name != SessionCookieName {
		t.Errorf("Expected cookie name %q, got %q", SessionCookieName, sm.Cookie.Name)
	}
	if !sm.Cookie.HttpOnly || !sm.Cookie.Secure {
		t.Error("Expected HttpOnly and Secure cookie")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("Expected SameSite=Lax, got %v", sm.Cookie.SameSite)
	}
	if sm.Lifetime != 2*time.Hour {
		t.Errorf("Expected lifetime 2h, got %v", sm.Lifetime)
	}
}

func TestSessionManager_CreateAndRead(t *testing.T) {
	sm := setupSessionManager(t, testAuthConfig)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.POST("/in", func(c *gin.Context) {
		if err := sm.CreateSession(c.Request, &entities.User{ID: 42, Username: "alice"}); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	router.GET("/me", func(c *gin.Context) {
		if !sm.IsAuthenticated(c.Request) {
			c.Status(http.StatusUnauthorized)
			return
		}
		_, hasLogin := sm.Get(c.Request.Context(), SessionKeyLoginAt).(time.Time)
		c.JSON(http.StatusOK, gin.H{
			"id":        sm.GetUserID(c.Request),
			"username":  sm.GetUsername(c.Request),
			"has_login": hasLogin,
		})
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/in", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rr.Code)
	}
	cookie := sessionCookie(rr)
	if cookie == nil {
		t.Fatal("Expected session cookie on a response without body")
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	want := `{"has_login":true,"id":42,"username":"alice"}`
	if rr.Body.String() != want {
		t.Errorf("Expected %s, got %s", want, rr.Body.String())
	}
}

func TestSessionManager_RenewsTokenOnLogin(t *testing.T) {
	sm := setupSessionManager(t, testAuthConfig)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.POST("/in", func(c *gin.Context) {
		_ = sm.CreateSession(c.Request, &entities.User{ID: 1, Username: "a"})
		c.String(http.StatusOK, "ok")
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/in", nil))
	first := sessionCookie(rr)

	req := httptest.NewRequest(http.MethodPost, "/in", nil)
	req.AddCookie(first)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	second := sessionCookie(rr)

	if first == nil || second == nil {
		t.Fatal("Expected session cookies on both logins")
	}
	if first.Value == second.Value {
		t.Error("Expected session token to change on login")
	}
}

func TestSessionManager_AnonymousRequestSetsNoCookie(t *testing.T) {
	sm := setupSessionManager(t, testAuthConfig)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.GET("/", func(c *gin.Context) {
		if sm.IsAuthenticated(c.Request) {
			t.Error("Expected anonymous request")
		}
		c.String(http.StatusOK, "ok")
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if sessionCookie(rr) != nil {
		t.Error("Expected no session cookie for untouched session")
	}
}
