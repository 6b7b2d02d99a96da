package route

import (
	"github.com/gofiber/fiber/v2"

	"akademiku_backend/internals/features/finance/billing_configs/controller"
)

// Base path di caller: /api/a
func BillingConfigAdminRoutes(r fiber.Router, h *controller.BillingConfigController) {
	cfg := r.Group("/payment-config")
	cfg.Get("/", h.Get)
	cfg.Post("/", h.Upsert)
}
