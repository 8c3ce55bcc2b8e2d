package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The /auth group is public; everything
// under /users runs behind the auth middleware and a role guard.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/verify", cfg.Auth.VerifyEmail)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/me", auth.RequireAnyRole(), cfg.Users.Me)
	users.Get("/users", auth.RequireRole(domain.RoleAdmin), cfg.Users.List)
	users.Put("/name", auth.RequireAnyRole(), cfg.Users.UpdateName)
	users.Put("/password", auth.RequireAnyRole(), cfg.Users.UpdatePassword)
	users.Put("/role", auth.RequireRole(domain.RoleAdmin), cfg.Users.UpdateRole)
}
