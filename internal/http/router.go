package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/templates"
)

// apiMethods are the methods an API resource answers with 405 when it does
// not support them. OPTIONS is answered by CORSHandler.
var apiMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

type methodRoute struct {
	method  string
	handler gin.HandlerFunc
}

// handleResource registers path for each route and a 405 responder for every
// other API method. The chain is before, then the method check, then guard,
// then the handler, so a wrong method is reported before authentication.
func handleResource(r gin.IRoutes, path string, before []gin.HandlerFunc, guard gin.HandlerFunc, routes ...methodRoute) {
	allowed := make([]string, 0, len(routes))
	registered := make(map[string]bool, len(routes))
	for _, rt := range routes {
		allowed = append(allowed, rt.method)
		registered[rt.method] = true

		chain := append([]gin.HandlerFunc{}, before...)
		chain = append(chain, guard, rt.handler)
		r.Handle(rt.method, path, chain...)
	}

	reject := append([]gin.HandlerFunc{}, before...)
	reject = append(reject, respondMethodNotAllowed(strings.Join(allowed, ", ")))
	for _, method := range apiMethods {
		if !registered[method] {
			r.Handle(method, path, reject...)
		}
	}
}

// NewHandler is the server's root handler: the router behind the
// cross-origin filter.
func NewHandler(cfg RouterConfig) http.Handler {
	return CORSHandler(cfg.AllowedOrigin, NewRouter(cfg))
}

// NewRouter creates and configures the HTTP router with all endpoints.
// Cross-origin headers are added by NewHandler, not here.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}

	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	router.Use(cfg.SessionManager.SessionLoadSave())
	router.Use(cfg.AuthMiddleware.Identify())

	router.SetHTMLTemplate(templates.MustParse())

	var auditor BookAuditor
	var authAuditor auth.AuthAuditor
	if cfg.Audit != nil {
		auditor = cfg.Audit
		authAuditor = cfg.Audit
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	booksAPI := NewBooksAPIController(cfg.Books, auditor)
	booksWeb := NewBooksWebController(cfg.Books, auditor)
	authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, authAuditor)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	authController.RegisterRoutes(router)

	// Books API endpoints
	apiGuard := cfg.AuthMiddleware.RequireAPIAuth()
	apiID := []gin.HandlerFunc{requireBookID(respondNotFound)}

	handleResource(router, "/api/books/", nil, apiGuard,
		methodRoute{http.MethodGet, booksAPI.List},
		methodRoute{http.MethodPost, booksAPI.Create},
	)
	handleResource(router, "/api/books/:id/", apiID, apiGuard,
		methodRoute{http.MethodGet, booksAPI.Get},
		methodRoute{http.MethodPut, booksAPI.Update},
		methodRoute{http.MethodPatch, booksAPI.Update},
		methodRoute{http.MethodDelete, booksAPI.Delete},
	)

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		handleResource(router, "/api/audit/", nil, apiGuard,
			methodRoute{http.MethodGet, auditController.RecentEvents},
		)
	}

	// UI routes
	web := router.Group("/", cfg.AuthMiddleware.RequireLogin())
	webID := requireBookID(booksWeb.RenderNotFound)

	web.GET("/", booksWeb.BooksPage)
	web.HEAD("/", booksWeb.BooksPage)
	web.GET("/create/", booksWeb.CreatePage)
	web.HEAD("/create/", booksWeb.CreatePage)
	web.POST("/create/", booksWeb.Create)
	web.GET("/update/:id/", webID, booksWeb.UpdatePage)
	web.HEAD("/update/:id/", webID, booksWeb.UpdatePage)
	web.POST("/update/:id/", webID, booksWeb.Update)
	web.GET("/delete/:id/", webID, booksWeb.Delete)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			respondNotFound(c)
			return
		}
		booksWeb.RenderNotFound(c)
	})

	return router
}
