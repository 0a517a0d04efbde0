package handler_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"votist/internal/domain"
	"votist/internal/dto"
	"votist/internal/handler"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserApp(user *domain.User) (*fiber.App, *MockUserService) {
	users := &MockUserService{}
	h := handler.NewUserHandler(users)
	app := newTestApp()
	api := app.Group("/api/users", asUser(user))
	api.Post("/init", h.InitUser)
	api.Get("/me", h.GetMe)
	return app, users
}

func TestUserHandler_InitUser(t *testing.T) {
	app, users := newUserApp(memberUser)
	users.InitUserFunc = func(ctx context.Context, identity domain.Identity) (*domain.User, int, error) {
		assert.Equal(t, "user_ext_1", identity.Subject)
		return memberUser, 4, nil
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/api/users/init", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.InitUserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "u1", body.User.ID)
	assert.Equal(t, 4, body.ProgressCreated)
}

func TestUserHandler_GetMe(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		app, users := newUserApp(adminUser)
		users.GetUserFunc = func(ctx context.Context, userID string) (*domain.User, error) {
			return adminUser, nil
		}
		resp, err := app.Test(httptest.NewRequest("GET", "/api/users/me", nil))
		require.NoError(t, err)

		var body dto.UserResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.IsAdmin)
	})

	t.Run("Anonymous", func(t *testing.T) {
		app, _ := newUserApp(nil)
		resp, err := app.Test(httptest.NewRequest("GET", "/api/users/me", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
