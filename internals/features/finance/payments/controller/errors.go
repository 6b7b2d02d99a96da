package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"akademiku_backend/internals/features/finance/payments/model"
	helper "akademiku_backend/internals/helpers"
)

// writeError: satu tempat mapping error domain → HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return helper.JsonError(c, fe.Code, fe.Message)
	}

	switch {
	case errors.Is(err, model.ErrConfigMissing):
		return helper.JsonError(c, fiber.StatusInternalServerError, "Billing config belum diatur admin")
	case errors.Is(err, model.ErrConfigInvalid):
		return helper.JsonError(c, fiber.StatusInternalServerError, "Billing config tidak valid")
	case errors.Is(err, model.ErrStudentNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Student tidak ditemukan")
	case errors.Is(err, model.ErrPaymentNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, model.ErrPaymentNotFound.Error())
	case errors.Is(err, model.ErrInvalidLevel),
		errors.Is(err, model.ErrNoEnrolledCourses),
		errors.Is(err, model.ErrInvalidCourseHours):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, model.ErrAlreadyPaid):
		return helper.JsonError(c, fiber.StatusConflict, "Pembayaran term ini sudah lunas")
	case errors.Is(err, model.ErrLedgerConflict):
		return helper.JsonError(c, fiber.StatusConflict, "Checkout sedang diproses, coba lagi")
	case errors.Is(err, model.ErrGatewayUnavailable):
		return helper.JsonError(c, fiber.StatusBadGateway, "Payment gateway tidak tersedia, coba lagi")
	case errors.Is(err, model.ErrSignatureInvalid):
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid signature")
	case errors.Is(err, model.ErrUnsupportedProvider):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	}

	log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan server")
}
