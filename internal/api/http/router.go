package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opsdesk/ticketstore/internal/api/http/handlers"
	"github.com/opsdesk/ticketstore/pkg/util"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Tickets   *handlers.TicketsHandler
	Dashboard *handlers.DashboardHandler
	Registry  *prometheus.Registry
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")
	api.Get("/health", cfg.Health.Health)

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/resolve", cfg.Tickets.ResolveTicket)
	tickets.Post("/:id/decline", cfg.Tickets.DeclineTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	api.Get("/dashboard/stats", cfg.Dashboard.Stats)

	if cfg.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}

	// catch-all for unmatched routes
	app.Use(func(c *fiber.Ctx) error {
		return util.NewNotFound("route", map[string]any{"path": c.Path()})
	})
}
