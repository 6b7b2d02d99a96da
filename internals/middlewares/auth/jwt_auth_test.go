package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akademiku_backend/internals/constants"
	helper "akademiku_backend/internals/helpers"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Use(AuthJWT(AuthJWTOpts{Secret: testSecret, AllowCookieFallback: true}))
	app.Get("/me", func(c *fiber.Ctx) error {
		id, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return err
		}
		lvl, _ := helper.GetLevelFromToken(c)
		return c.JSON(fiber.Map{"id": id.String(), "role": helper.GetRoleFromToken(c), "level": lvl})
	})
	return app
}

func TestAuthJWTPopulatesPrincipal(t *testing.T) {
	app := newAuthApp()
	id := uuid.New()
	tok := signToken(t, testSecret, jwt.MapClaims{
		"sub":   id.String(),
		"role":  "Student",
		"level": 2,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthJWTRejects(t *testing.T) {
	app := newAuthApp()
	id := uuid.New().String()

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"wrong secret", signToken(t, "other", jwt.MapClaims{"id": id})},
		{"expired", signToken(t, testSecret, jwt.MapClaims{"id": id, "exp": time.Now().Add(-time.Hour).Unix()})},
		{"bad user id", signToken(t, testSecret, jwt.MapClaims{"id": "not-a-uuid"})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestAuthJWTCookieFallback(t *testing.T) {
	app := newAuthApp()
	tok := signToken(t, testSecret, jwt.MapClaims{"id": uuid.New().String(), "role": "admin"})

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Cookie", "access_token="+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOnlyRoles(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(helper.LocRole, c.Get("X-Role"))
		return c.Next()
	})
	app.Get("/admin", OnlyRoles(constants.RoleErrorAdmin("payment config"), constants.AdminOnly...), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	for role, want := range map[string]int{
		"admin":   fiber.StatusNoContent,
		"student": fiber.StatusForbidden,
		"":        fiber.StatusUnauthorized,
	} {
		req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
		req.Header.Set("X-Role", role)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, "role=%q", role)
	}
}
