package handler

import (
	"votist/internal/domain"
	"votist/internal/dto"
	"votist/internal/logger"
	"votist/internal/middleware"
	"votist/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// InitUser syncs the caller into the local directory and seeds quiz progress.
// @Summary Initialize the current user
// @Description Creates or refreshes the local user from the session token and seeds quiz progress. Idempotent.
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.InitUserResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /users/init [post]
func (h *UserHandler) InitUser(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return domain.NewUnauthorizedError("authentication required")
	}

	user, created, err := h.userService.InitUser(c.Context(), *identity)
	if err != nil {
		return err
	}
	logger.Get().Info("User initialized", zap.String("userID", user.ID), zap.Int("progressCreated", created))
	return c.JSON(dto.InitUserResponse{User: dto.ToUserResponse(user), ProgressCreated: created})
}

// GetMe returns the caller's local user record.
// @Summary Get current user
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	user, err := h.userService.GetUser(c.Context(), actor.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.ToUserResponse(user))
}
