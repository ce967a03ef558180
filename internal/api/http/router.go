package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)
	authProtected.Get("/me", cfg.Auth.Me)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/messages/:messageId", cfg.Tickets.GetMessage)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Post("/:id/cancel", cfg.Tickets.Cancel)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Get("/:id/messages", cfg.Tickets.ListMessages)
	tickets.Get("/:id/events", cfg.Tickets.ListEvents)

	staffTickets := tickets.Group("", auth.RequireModeratorOrAdmin())
	staffTickets.Post("/:id/assign", cfg.Tickets.Assign)
	staffTickets.Post("/:id/status", cfg.Tickets.ChangeStatus)
	staffTickets.Post("/:id/priority", cfg.Tickets.ChangePriority)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireModeratorOrAdmin())
	staff.Get("/assignable", cfg.Users.ListAssignable)

	analytics := app.Group("/analytics", cfg.AuthMiddleware.Handle, auth.RequireModeratorOrAdmin())
	analytics.Get("/tickets/daily", cfg.Analytics.TicketsByDay)
	analytics.Get("/tickets/status", cfg.Analytics.TicketsByStatus)
	analytics.Get("/tickets/moderators", cfg.Analytics.TicketsByModerator)
	analytics.Get("/tickets/response-time", cfg.Analytics.ResponseTime)
	analytics.Get("/tickets/resolution-time", cfg.Analytics.ResolutionTime)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/users", cfg.Users.List)
	admin.Post("/users", cfg.Users.Create)
	admin.Get("/users/:id", cfg.Users.Get)
	admin.Patch("/users/:id", cfg.Users.Update)
	admin.Delete("/users/:id", cfg.Users.Deactivate)
}
