package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/application/reason"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine         *inventory.StockEngine
	Reasons        *reason.UseCase
	JWTSecret      string
	ServiceName    string
	MetricsHandler http.Handler // nil = sin /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	inv := api.Group("/inventory", AuthMiddleware(deps.JWTSecret))
	read := RequirePermission(PermInventoryRead)
	update := RequirePermission(PermInventoryUpdate)
	manage := RequirePermission(PermReasonsManage)
	// un permiso explícito en el token no basta: el catálogo de motivos es del administrador
	adminOnly := RequireRole(RoleAdmin)

	h := NewInventoryHandler(deps.Engine)
	inv.Post("/movements", update, h.RecordMovement)
	inv.Post("/entries", update, h.RecordEntry)
	inv.Post("/exits", update, h.RecordExit)
	inv.Post("/adjustments", update, h.RecordAdjustment)
	inv.Get("/stock", read, h.GetStock)
	inv.Put("/stock/threshold", update, h.SetThreshold)
	inv.Post("/stock/rebuild", update, h.Rebuild)
	inv.Get("/kardex", read, h.GetKardex)
	inv.Get("/alerts", read, h.GetAlerts)

	rh := NewReasonHandler(deps.Reasons)
	inv.Get("/reasons", read, rh.List)
	inv.Post("/reasons", adminOnly, manage, rh.Create)
	inv.Patch("/reasons/:id/activate", adminOnly, manage, rh.Activate)
	inv.Patch("/reasons/:id/deactivate", adminOnly, manage, rh.Deactivate)
	inv.Delete("/reasons/:id", adminOnly, manage, rh.Delete)
}
