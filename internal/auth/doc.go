// Package auth provides session-based authentication for the catalog.
//
// Users register with a username and password (bcrypt-hashed) and log in
// through either an HTML form or a JSON request. A successful login stores
// the user id in a server-side session (scs, SQLite-backed) referenced by
// the "session" cookie.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>     # CSRF key, auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h              # Session duration
//	AUTH_BCRYPT_COST=12                    # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true               # HTTPS-only cookies
//	AUTH_CSRF_ENABLED=true                 # CSRF protection on form routes
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)
//	sessions, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	mw := auth.NewMiddleware(authService, sessions)
//
//	router.Use(sessions.SessionLoadSave(), mw.Identify())
//	api := router.Group("/api", mw.RequireAPIAuth())
//	web := router.Group("/", mw.RequireLogin())
//
// Extract the user in handlers:
//
//	userID := auth.GetUserID(c) // 0 when anonymous
package auth
