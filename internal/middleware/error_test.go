package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"votist/internal/domain"
	"votist/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{"NotFound", domain.NewNotFoundError("post not found"), fiber.StatusNotFound, "NOT_FOUND", "post not found"},
		{"Forbidden", domain.NewForbiddenError("Complete all SCHOLAR level quizzes to participate (1 remaining)"), fiber.StatusForbidden, "FORBIDDEN", "Complete all SCHOLAR level quizzes to participate (1 remaining)"},
		{"Conflict", domain.NewConflictError("quiz already exists"), fiber.StatusConflict, "CONFLICT", "quiz already exists"},
		{"InvalidInput", domain.NewInvalidInputError("poll has ended"), fiber.StatusBadRequest, "INVALID_INPUT", "poll has ended"},
		{"Unauthorized", domain.NewUnauthorizedError("authentication required"), fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
		{"Internal hides cause", domain.NewInternalError("failed to vote", errors.New("pq: deadlock")), fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
		{"Wrapped domain error", errors.Join(errors.New("outer"), domain.NewNotFoundError("comment not found")), fiber.StatusNotFound, "NOT_FOUND", "comment not found"},
		{"Fiber error", fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), fiber.StatusMethodNotAllowed, "HTTP_ERROR", "nope"},
		{"Unknown error", errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
			app.Get("/test", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body middleware.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedCode, body.Code)
			assert.Equal(t, tt.expectedMsg, body.Message)
			assert.Equal(t, tt.expectedStatus, body.Status)
		})
	}
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/test", func(c *fiber.Ctx) error {
		return domain.ValidationErrors{
			domain.NewMissingFieldError("content"),
			domain.NewOutOfRangeError("limit", 500, 1, 100),
		}
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body middleware.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "content", body.Errors[0].Field)
	assert.Equal(t, domain.CodeOutOfRange, body.Errors[1].Code)
}

func TestErrorHandler_Details(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/test", func(c *fiber.Ctx) error {
		return domain.NewForbiddenError("Complete all VOTIST level quizzes to participate (2 remaining)").WithContext("remaining", 2)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)

	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(2), body.Details["remaining"])
}
