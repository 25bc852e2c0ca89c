package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/api/http/handlers"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/auth"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	KB             *handlers.KBHandler
	Agent          *handlers.AgentHandler
	Config         *handlers.ConfigHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/reply", cfg.Tickets.AddReply)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/assign", auth.RequireStaff(), cfg.Tickets.AssignTicket)
	tickets.Get("/:id/audit", cfg.Tickets.AuditTimeline)

	kbGroup := api.Group("/kb")
	kbGroup.Get("", cfg.KB.ListArticles)
	kbGroup.Get("/search", cfg.KB.SearchArticles)
	kbGroup.Get("/:id", cfg.KB.GetArticle)
	kbGroup.Post("", auth.RequireStaff(), cfg.KB.CreateArticle)
	kbGroup.Put("/:id", auth.RequireStaff(), cfg.KB.UpdateArticle)
	kbGroup.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.KB.DeleteArticle)

	agentGroup := api.Group("/agent", auth.RequireStaff())
	agentGroup.Post("/triage", cfg.Agent.TriggerTriage)
	agentGroup.Get("/suggestion/:ticketId", cfg.Agent.GetSuggestion)
	agentGroup.Post("/suggestion/:id/review", cfg.Agent.ReviewSuggestion)
	agentGroup.Get("/stats", cfg.Agent.Stats)

	configGroup := api.Group("/config")
	configGroup.Get("", auth.RequireStaff(), cfg.Config.GetSettings)
	configGroup.Put("", auth.RequireRole(domain.RoleAdmin), cfg.Config.UpdateSettings)
}
