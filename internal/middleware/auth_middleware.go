package middleware

import (
	"strings"

	"votist/internal/domain"
	"votist/internal/logger"
	"votist/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserKey             = "user"     // *domain.User in fiber.Ctx locals
	IdentityKey         = "identity" // *domain.Identity in fiber.Ctx locals
)

// CurrentUser returns the resolved local user, if the request carried one.
func CurrentUser(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(UserKey).(*domain.User)
	return user, ok && user != nil
}

// CurrentIdentity returns the verified provider identity, if any.
func CurrentIdentity(c *fiber.Ctx) (*domain.Identity, bool) {
	identity, ok := c.Locals(IdentityKey).(*domain.Identity)
	return identity, ok && identity != nil
}

func bearerToken(c *fiber.Ctx) (string, *ErrorResponse) {
	authHeader := c.Get(AuthorizationHeader)
	if authHeader == "" {
		return "", &ErrorResponse{Code: "MISSING_AUTH_HEADER", Message: "Authorization header is missing", Status: fiber.StatusUnauthorized}
	}
	if authHeader == strings.TrimSpace(BearerSchema) {
		return "", &ErrorResponse{Code: "EMPTY_TOKEN", Message: "Token is empty", Status: fiber.StatusUnauthorized}
	}
	if !strings.HasPrefix(authHeader, BearerSchema) {
		return "", &ErrorResponse{Code: "INVALID_AUTH_SCHEME", Message: "Authorization scheme is not Bearer", Status: fiber.StatusUnauthorized}
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
	if tokenString == "" {
		return "", &ErrorResponse{Code: "EMPTY_TOKEN", Message: "Token is empty", Status: fiber.StatusUnauthorized}
	}
	return tokenString, nil
}

// Protected requires a valid provider session token and resolves the caller
// into a local user stored under UserKey.
func Protected(verifier service.TokenVerifier, resolver service.IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, errResp := bearerToken(c)
		if errResp != nil {
			return c.Status(errResp.Status).JSON(errResp)
		}

		identity, err := verifier.Verify(c.Context(), tokenString)
		if err != nil {
			logger.Get().Debug("Session token rejected", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: "Session token is invalid or expired",
				Status:  fiber.StatusUnauthorized,
			})
		}

		user, err := resolver.Resolve(c.Context(), *identity)
		if err != nil {
			return err
		}

		c.Locals(IdentityKey, identity)
		c.Locals(UserKey, user)
		return c.Next()
	}
}

// OptionalAuth resolves the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(verifier service.TokenVerifier, resolver service.IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(AuthorizationHeader) == "" {
			return c.Next()
		}
		tokenString, errResp := bearerToken(c)
		if errResp != nil {
			logger.Get().Debug("OptionalAuth: unusable Authorization header, proceeding as anonymous", zap.String("reason", errResp.Code))
			return c.Next()
		}

		identity, err := verifier.Verify(c.Context(), tokenString)
		if err != nil {
			logger.Get().Debug("OptionalAuth: token validation failed, proceeding as anonymous", zap.Error(err))
			return c.Next()
		}
		user, err := resolver.Resolve(c.Context(), *identity)
		if err != nil {
			logger.Get().Warn("OptionalAuth: identity resolution failed, proceeding as anonymous", zap.String("subject", identity.Subject), zap.Error(err))
			return c.Next()
		}

		c.Locals(IdentityKey, identity)
		c.Locals(UserKey, user)
		return c.Next()
	}
}

// RequireAdmin must run after Protected.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return domain.NewUnauthorizedError("authentication required")
		}
		if !user.IsAdmin {
			return domain.NewForbiddenError("admin access required")
		}
		return c.Next()
	}
}
