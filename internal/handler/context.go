package handler

import (
	"votist/internal/domain"
	"votist/internal/dto"
	"votist/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// requireActor returns the authenticated caller or an Unauthorized error.
func requireActor(c *fiber.Ctx) (domain.Actor, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.Actor{}, domain.NewUnauthorizedError("authentication required")
	}
	return user.Actor(), nil
}

// optionalActor returns nil for anonymous callers.
func optionalActor(c *fiber.Ctx) *domain.Actor {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	actor := user.Actor()
	return &actor
}

func pathID(c *fiber.Ctx) string {
	if id, ok := c.Locals(middleware.ValidatedIDKey).(string); ok {
		return id
	}
	return c.Params("id")
}

func paginationFrom(c *fiber.Ctx, defaultLimit int) dto.Pagination {
	if p, ok := c.Locals(middleware.ValidatedPaginationKey).(dto.Pagination); ok {
		return p
	}
	return dto.Pagination{Limit: defaultLimit, Page: 1}
}

func invalidBody() error {
	return domain.ValidationErrors{domain.NewValidationError("request body is not valid JSON")}
}
