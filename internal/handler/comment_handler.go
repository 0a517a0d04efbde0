package handler

import (
	"votist/internal/domain"
	"votist/internal/dto"
	"votist/internal/service"
	"votist/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CommentHandler struct {
	comments  service.CommentService
	likes     service.LikeService
	validator *validation.Validator
}

func NewCommentHandler(comments service.CommentService, likes service.LikeService) *CommentHandler {
	return &CommentHandler{comments: comments, likes: likes, validator: validation.NewValidator()}
}

// CreateComment godoc
// @Summary Comment on a post
// @Description Adds a root comment, or a reply when parent_id is set
// @Tags comments
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.CommentResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse "Quiz requirement not met"
// @Failure 404 {object} middleware.ErrorResponse
// @Router /comments [post]
func (h *CommentHandler) CreateComment(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}
	if errors := h.validator.ValidateCreateComment(&req); len(errors) > 0 {
		return errors
	}

	comment, err := h.comments.CreateComment(c.Context(), actor, req.PostID, req.Content, req.ParentID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToCommentResponse(comment))
}

// UpdateComment godoc
// @Summary Edit a comment
// @Description Authors may edit within two minutes of posting; admins at any time
// @Tags comments
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Comment ID"
// @Param request body dto.UpdateCommentRequest true "Content"
// @Success 200 {object} dto.CommentResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /comments/{id} [put]
func (h *CommentHandler) UpdateComment(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}
	if errors := h.validator.ValidateComment(req.Content); len(errors) > 0 {
		return errors
	}

	comment, err := h.comments.UpdateComment(c.Context(), actor, pathID(c), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(dto.ToCommentResponse(comment))
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Deleting a root comment removes its whole thread
// @Tags comments
// @Security ApiKeyAuth
// @Param id path string true "Comment ID"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	if err := h.comments.DeleteComment(c.Context(), actor, pathID(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeComment godoc
// @Summary Toggle a like on a comment
// @Tags comments
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} dto.LikeResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /comments/{id}/like [post]
func (h *CommentHandler) LikeComment(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	state, err := h.likes.ToggleLike(c.Context(), actor, domain.LikeTargetComment, pathID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.LikeResponse{Likes: state.Likes, IsLiked: state.IsLiked})
}
