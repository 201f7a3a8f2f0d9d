package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/spec-kit/staff-roster/internal/api/http/handlers"
	"github.com/spec-kit/staff-roster/internal/auth"
	"github.com/spec-kit/staff-roster/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Staff         *handlers.StaffHandler
	PinMiddleware *auth.PinMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/debug/metrics", cfg.Health.Metrics)

	api := app.Group("/api", cors.New(cors.Config{
		AllowMethods: "GET,PUT,OPTIONS",
		AllowHeaders: "Content-Type, " + domain.CredentialHeader,
	}))
	api.Get("/staff", cfg.Staff.List)
	api.Put("/staff", cfg.PinMiddleware.Handle, cfg.Staff.Replace)
}
