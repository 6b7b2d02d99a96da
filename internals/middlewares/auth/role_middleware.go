package auth

import (
	"github.com/gofiber/fiber/v2"

	helper "akademiku_backend/internals/helpers"
)

// OnlyRoles mengizinkan request kalau role di token termasuk allowedRoles.
func OnlyRoles(customForbiddenMessage string, allowedRoles ...string) fiber.Handler {
	if customForbiddenMessage == "" {
		customForbiddenMessage = "Forbidden: you are not authorized to access this resource"
	}

	return func(c *fiber.Ctx) error {
		role := helper.GetRoleFromToken(c)
		if role == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				return c.Next()
			}
		}
		return helper.JsonError(c, fiber.StatusForbidden, customForbiddenMessage)
	}
}
