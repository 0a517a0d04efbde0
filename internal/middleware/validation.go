package middleware

import (
	"strconv"

	"votist/internal/domain"
	"votist/internal/dto"
	"votist/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	ValidatedIDKey         = "validated_id"
	ValidatedPaginationKey = "validated_pagination"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateIDParam validates the :id path parameter and stores it in locals.
func (vm *ValidationMiddleware) ValidateIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if errors := vm.validator.ValidateID("id", id); len(errors) > 0 {
			return errors
		}
		c.Locals(ValidatedIDKey, id)
		return c.Next()
	}
}

// ValidatePagination parses page and limit with defaults and bounds.
func (vm *ValidationMiddleware) ValidatePagination(defaultLimit, maxLimit int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := parseIntQuery(c, "page", 1)
		if err != nil {
			return domain.ValidationErrors{domain.NewInvalidFormatError("page", c.Query("page"))}
		}
		limit, err := parseIntQuery(c, "limit", defaultLimit)
		if err != nil {
			return domain.ValidationErrors{domain.NewInvalidFormatError("limit", c.Query("limit"))}
		}
		if errors := vm.validator.ValidatePagination(page, limit, maxLimit); len(errors) > 0 {
			return errors
		}
		c.Locals(ValidatedPaginationKey, dto.Pagination{Limit: limit, Offset: (page - 1) * limit, Page: page})
		return c.Next()
	}
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
