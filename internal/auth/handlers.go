package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/templates"
)

// AuthAuditor records authentication events.
type AuthAuditor interface {
	LogAuth(userID uint, action string, ipAddr, userAgent string, success bool)
}

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
func isLocalPath(path string) bool {
	if path == "" {
		return false
	}

	if !strings.HasPrefix(path, "/") {
		return false
	}

	// Reject protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}

	if strings.Contains(path, "://") {
		return false
	}

	if strings.Contains(path, "\\") {
		return false
	}

	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/" if invalid.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

func isJSONRequest(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Content-Type"), "application/json")
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthController handles authentication-related HTTP endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	auditor        AuthAuditor
}

// NewAuthController creates a new authentication controller. auditor may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, auditor AuthAuditor) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		auditor:        auditor,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.GET("/register", ac.RegisterPage)
	router.POST("/register", ac.Register)
	router.Any("/logout", ac.Logout)
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if IsAuthenticated(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ac.renderLogin(c, http.StatusOK, sanitizeRedirectPath(c.Query("next")), "", "")
}

// Login handles both JSON and form logins.
func (ac *AuthController) Login(c *gin.Context) {
	if isJSONRequest(c) {
		ac.loginJSON(c)
		return
	}

	username := c.PostForm("username")
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))

	user, err := ac.authenticate(c, username, password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			log.Printf("Login failed: %v", err)
		}
		ac.renderLogin(c, http.StatusOK, next, username, "Invalid credentials, try again.")
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("Failed to create session: %v", err)
		ac.renderLogin(c, http.StatusInternalServerError, next, username, "Failed to create session")
		return
	}

	c.Redirect(http.StatusFound, next)
}

func (ac *AuthController) loginJSON(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid JSON"})
		return
	}

	user, err := ac.authenticate(c, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials"})
			return
		}
		log.Printf("Login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("Failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Login successful"})
}

// authenticate verifies credentials and records the attempt.
func (ac *AuthController) authenticate(c *gin.Context, username, password string) (*entities.User, error) {
	user, err := ac.service.Authenticate(username, password)
	if err != nil {
		ac.audit(c, 0, entities.AuditActionLogin, false)
		return nil, err
	}
	ac.audit(c, user.ID, entities.AuditActionLogin, true)
	return user, nil
}

// Logout destroys the session.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := GetUserID(c)
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		log.Printf("Failed to destroy session: %v", err)
	}
	if userID != 0 {
		ac.audit(c, userID, entities.AuditActionLogout, true)
	}

	if isJSONRequest(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout successful"})
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

// RegisterPage renders the registration form.
func (ac *AuthController) RegisterPage(c *gin.Context) {
	ac.renderRegister(c, http.StatusOK, "", "", "")
}

// Register creates an account from the registration form and logs the user in.
func (ac *AuthController) Register(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")

	user, err := ac.service.Register(username, email, c.PostForm("password"), c.PostForm("confirm_password"))
	if err != nil {
		var message string
		switch {
		case errors.Is(err, ErrUsernameRequired), errors.Is(err, ErrPasswordRequired):
			message = "Username and password are required."
		case errors.Is(err, ErrPasswordMismatch):
			message = "Passwords do not match."
		case errors.Is(err, ErrUserExists):
			message = "Username already taken."
		case errors.Is(err, ErrPasswordTooLong):
			message = "Password must be at most 72 bytes."
		default:
			log.Printf("Registration failed: %v", err)
			ac.renderRegister(c, http.StatusInternalServerError, username, email, "Registration failed, try again.")
			return
		}
		ac.renderRegister(c, http.StatusOK, username, email, message)
		return
	}

	ac.audit(c, user.ID, entities.AuditActionRegister, true)

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("Failed to create session: %v", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (ac *AuthController) audit(c *gin.Context, userID uint, action string, success bool) {
	if ac.auditor == nil {
		return
	}
	ac.auditor.LogAuth(userID, action, c.ClientIP(), c.Request.UserAgent(), success)
}

func (ac *AuthController) renderLogin(c *gin.Context, status int, next, username, message string) {
	c.HTML(status, templates.Login, gin.H{
		"Title":        "Log in",
		"Next":         next,
		"FormUsername": username,
		"Error":        message,
	})
}

func (ac *AuthController) renderRegister(c *gin.Context, status int, username, email, message string) {
	c.HTML(status, templates.Register, gin.H{
		"Title":        "Register",
		"FormUsername": username,
		"FormEmail":    email,
		"CSRFToken":    GetCSRFToken(c),
		"Error":        message,
	})
}
