package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinelabs/vitrine/internal/pkg/usercontext"
)

func guardedApp(ctx *usercontext.UserContext) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if ctx != nil {
			c.Locals("USER_CONTEXT", *ctx)
		}
		return c.Next()
	})
	app.Get("/user", RequireAuth, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/admin", RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name string
		ctx  *usercontext.UserContext
		want int
	}{
		{"anonymous", nil, fiber.StatusUnauthorized},
		{"logged in", &usercontext.UserContext{UserID: 1, IsLoggedIn: true}, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := guardedApp(tt.ctx).Test(httptest.NewRequest(http.MethodGet, "/user", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name string
		ctx  *usercontext.UserContext
		want int
	}{
		{"anonymous", nil, fiber.StatusUnauthorized},
		{"regular user", &usercontext.UserContext{UserID: 1, IsLoggedIn: true}, fiber.StatusForbidden},
		{"admin", &usercontext.UserContext{UserID: 1, IsLoggedIn: true, IsAdmin: true}, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := guardedApp(tt.ctx).Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
