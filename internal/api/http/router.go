package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intranet-portal/internal/api/http/handlers"
	"github.com/spec-kit/intranet-portal/internal/auth"
)

const (
	// LoginPath is where the guard sends unauthenticated callers.
	LoginPath = "/"
	// HomePath is the first screen after signing in.
	HomePath = "/dashboard"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Session *handlers.SessionHandler
	Screens *handlers.ScreensHandler
	Notices *handlers.NoticesHandler
	Users   *handlers.UsersHandler
	Guard   *auth.Guard
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Get(LoginPath, cfg.Session.Index)
	app.Post("/login", cfg.Session.Login)
	app.Post("/logout", cfg.Session.Logout)
	// The menu's Sair entry is a plain link.
	app.Get("/logout", cfg.Session.Logout)

	requireSession := cfg.Guard.RequireSession()
	app.Get("/dashboard", requireSession, cfg.Screens.Dashboard)
	app.Get("/menu", requireSession, cfg.Screens.Menu)
	app.Get("/profile", requireSession, cfg.Screens.Profile)
	app.Post("/profile", requireSession, cfg.Screens.UpdateProfile)
	app.Get("/notices", requireSession, cfg.Notices.List)

	manage := cfg.Guard.RequireCapability(auth.CapabilityManageUsers)
	app.Post("/notices", requireSession, manage, cfg.Notices.Create)
	app.Delete("/notices/:id", requireSession, manage, cfg.Notices.Delete)
	app.Get("/users", requireSession, manage, cfg.Users.List)
	app.Post("/users", requireSession, manage, cfg.Users.Create)
	app.Put("/users/:id", requireSession, manage, cfg.Users.Update)
	app.Patch("/users/:id/status", requireSession, manage, cfg.Users.SetStatus)
	app.Delete("/users/:id", requireSession, manage, cfg.Users.Delete)
}
