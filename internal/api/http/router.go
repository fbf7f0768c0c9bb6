package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yafi/support-backend/internal/api/http/handlers"
	"github.com/yafi/support-backend/internal/auth"
	"github.com/yafi/support-backend/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Messages       *handlers.MessagesHandler
	Stats          *handlers.StatsHandler
	Chatbot        *handlers.ChatbotHandler
	Stream         *handlers.StreamHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.ChangePassword)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	users.Get("/me", cfg.Users.Me)
	users.Post("/", auth.RequireAdmin(), cfg.Users.CreateAccount)
	users.Get("/", auth.RequireAdmin(), cfg.Users.ListByRole)
	users.Get("/:id", cfg.Users.GetAccount)
	users.Patch("/:id", cfg.Users.UpdateProfile)
	users.Patch("/:id/active", auth.RequireAdmin(), cfg.Users.SetActive)
	users.Delete("/:id", cfg.Users.DeleteAccount)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("/", auth.RequireRole(domain.RoleClient), cfg.Tickets.CreateTicket)
	tickets.Post("/create", auth.RequireRole(domain.RoleClient), cfg.Tickets.CreateFromChatbot)
	tickets.Get("/", auth.RequireAdmin(), cfg.Tickets.ListAll)
	tickets.Get("/mine", auth.RequireRole(domain.RoleClient), cfg.Tickets.ListMine)
	tickets.Get("/assigned", auth.RequireRole(domain.RoleAgent), cfg.Tickets.ListAssigned)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", auth.RequireRole(domain.RoleAgent), cfg.Tickets.ChangeStatus)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/messages", cfg.Messages.PostMessage)
	tickets.Get("/:id/messages", cfg.Messages.ListMessages)

	stats := app.Group("/stats", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	stats.Get("/agent/dashboard", auth.RequireRole(domain.RoleAgent), cfg.Stats.AgentDashboard)
	// The review route must precede the :id capture.
	stats.Get("/admin/agents/review", auth.RequireAdmin(), cfg.Stats.AgentsReview)
	stats.Get("/admin/agents/:id", auth.RequireAdmin(), cfg.Stats.AgentReport)
	stats.Get("/admin/global", auth.RequireAdmin(), cfg.Stats.GlobalReport)

	app.Post("/chatbot", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Chatbot.Relay)

	app.Get("/ws/tickets", cfg.Stream.Upgrade, cfg.Stream.Tickets())
}
