package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/pequemaths/pequemaths-api/internal/api/http/handlers"
	"github.com/pequemaths/pequemaths-api/internal/auth"
	"github.com/pequemaths/pequemaths-api/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Sessions          *handlers.SessionHandler
	Profiles          *handlers.ProfileHandler
	Admin             *handlers.AdminHandler
	SessionMiddleware *auth.SessionMiddleware
	Admins            auth.AdminChecker
	LoginLimiter      *LoginRateLimiter
	Metrics           *observability.Metrics

	CookieName        string
	LoginPath         string
	ProtectedPrefixes []string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(auth.RouteGuard(cfg.CookieName, cfg.LoginPath, cfg.ProtectedPrefixes))

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")
	if cfg.LoginLimiter != nil {
		api.Post("/sessionLogin", cfg.LoginLimiter.Handle, cfg.Sessions.Login)
	} else {
		api.Post("/sessionLogin", cfg.Sessions.Login)
	}
	api.Post("/sessionLogout", cfg.Sessions.Logout)

	session := api.Group("", cfg.SessionMiddleware.Handle)
	session.Post("/profile", cfg.Profiles.Update)
	session.Get("/me", auth.RequireSession(), cfg.Profiles.Me)

	admin := session.Group("/admin", auth.RequireSession(), auth.RequireAdmin(cfg.Admins))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Get("/users/:uid", cfg.Admin.GetUser)
	admin.Put("/users/:uid/role", cfg.Admin.SetRole)
}
