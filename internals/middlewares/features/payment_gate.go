package features

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"akademiku_backend/internals/constants"
	"akademiku_backend/internals/features/finance/payments/model"
	"akademiku_backend/internals/features/finance/payments/service"
	helper "akademiku_backend/internals/helpers"
)

type PaidChecker interface {
	IsPaid(ctx context.Context, p service.Principal) (bool, error)
}

// RequirePaidTerm: student wajib punya record lunas untuk (level, term aktif).
// Role lain (admin, professor) langsung lewat.
func RequirePaidTerm(gate PaidChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := helper.GetRoleFromToken(c)
		if role != constants.RoleStudent {
			return c.Next()
		}

		userID, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return err
		}
		level, hasLevel := helper.GetLevelFromToken(c)

		paid, err := gate.IsPaid(c.UserContext(), service.Principal{
			StudentID: userID,
			Role:      role,
			Level:     level,
			HasLevel:  hasLevel,
		})
		if err != nil {
			switch {
			case errors.Is(err, model.ErrStudentNotFound), errors.Is(err, model.ErrInvalidLevel):
				return helper.JsonError(c, fiber.StatusForbidden, err.Error())
			case errors.Is(err, model.ErrConfigMissing):
				return helper.JsonError(c, fiber.StatusInternalServerError, "Billing config belum diatur")
			default:
				log.Printf("[ERROR] payment gate user=%s: %v", userID, err)
				return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa status pembayaran")
			}
		}
		if !paid {
			return helper.JsonError(c, fiber.StatusPaymentRequired, "Pembayaran term ini belum lunas")
		}
		return c.Next()
	}
}
