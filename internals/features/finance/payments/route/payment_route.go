package route

import (
	"github.com/gofiber/fiber/v2"

	"akademiku_backend/internals/constants"
	"akademiku_backend/internals/features/finance/payments/controller"
	"akademiku_backend/internals/middlewares"
	"akademiku_backend/internals/middlewares/auth"
	"akademiku_backend/internals/middlewares/features"
)

// Base path di caller: /api/u
func PaymentUserRoutes(r fiber.Router, h *controller.PaymentController, gate features.PaidChecker) {
	pay := r.Group("/payment", auth.OnlyRoles(constants.RoleErrorStudent("pembayaran"), constants.StudentOnly...))
	pay.Post("/create-session", middlewares.CheckoutRateLimiter(), h.CreateSession)
	pay.Get("/student/status", h.StudentStatus)

	// konten term berjalan: professor/admin lolos, student wajib lunas
	r.Get("/content/access", features.RequirePaidTerm(gate), h.ContentAccess)
}

// Base path di caller: /api (tanpa JWT)
func PaymentWebhookRoutes(r fiber.Router, h *controller.PaymentController) {
	wh := r.Group("/payment/webhook", middlewares.WebhookRateLimiter())
	wh.Post("/", h.Webhook)
	wh.Post("/:provider", h.Webhook)
}

// Base path di caller: /api/a
func PaymentAdminRoutes(r fiber.Router, h *controller.PaymentController) {
	adm := r.Group("/payment/admin")
	adm.Get("/search", h.AdminSearch)
	adm.Get("/records", h.AdminList)
}
