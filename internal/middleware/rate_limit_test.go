package middleware_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"votist/internal/config"
	"votist/internal/domain"
	"votist/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLimiter(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-Test-User"); id != "" {
			c.Locals(middleware.UserKey, &domain.User{ID: id})
		}
		return c.Next()
	})
	app.Use(middleware.WriteLimiter(config.RateLimitConfig{Max: 2, Window: time.Minute}))
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Get("/things", ok)
	app.Post("/things", ok)

	post := func(user string) int {
		req := httptest.NewRequest("POST", "/things", nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, post("u1"))
	assert.Equal(t, fiber.StatusOK, post("u1"))

	req := httptest.NewRequest("POST", "/things", nil)
	req.Header.Set("X-Test-User", "u1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "RATE_LIMITED", body.Code)

	t.Run("Separate budget per user", func(t *testing.T) {
		assert.Equal(t, fiber.StatusOK, post("u2"))
	})

	t.Run("Reads are not limited", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			resp, err := app.Test(httptest.NewRequest("GET", "/things", nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}
	})
}
