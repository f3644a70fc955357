package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Chat           *ChatHandler
	Moves          *MoveHandler
	Dashboard      *DashboardHandler
	Health         *HealthHandler
	Metrics        *metrics.Prometheus // nil = sin /metrics
	JWTSecret      string
	OperatorRoles  []string      // vacío = cualquier usuario autenticado valida/cancela
	RequestTimeout time.Duration // plazo de cada petición bajo /api; 0 = sin plazo
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Health != nil {
		app.Get("/health", deps.Health.Check)
	}
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", RequestContext(deps.RequestTimeout), AuthMiddleware(deps.JWTSecret))

	chat := api.Group("/chat")
	chat.Post("/", deps.Chat.Chat)
	chat.Post("/execute", deps.Chat.Execute)
	chat.Get("/history", deps.Chat.History)

	operator := func(c *fiber.Ctx) error { return c.Next() }
	if len(deps.OperatorRoles) > 0 {
		operator = RequireRole(deps.OperatorRoles...)
	}

	moves := api.Group("/moves")
	moves.Post("/", deps.Moves.Create)
	moves.Get("/", deps.Moves.List)
	moves.Get("/:id", deps.Moves.GetByID)
	moves.Get("/:id/document", deps.Moves.Document)
	moves.Post("/:id/check", deps.Moves.Check)
	moves.Post("/:id/validate", operator, deps.Moves.Validate)
	moves.Post("/:id/cancel", operator, deps.Moves.Cancel)

	api.Get("/dashboard/kpis", deps.Dashboard.GetKPIs)
}
