package handler

import (
	"votist/internal/domain"
	"votist/internal/dto"
	"votist/internal/service"
	"votist/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// PostHandler serves posts, their polls, likes and comment threads.
type PostHandler struct {
	posts     service.PostService
	votes     service.VoteService
	likes     service.LikeService
	comments  service.CommentService
	validator *validation.Validator
}

func NewPostHandler(posts service.PostService, votes service.VoteService, likes service.LikeService, comments service.CommentService) *PostHandler {
	return &PostHandler{
		posts:     posts,
		votes:     votes,
		likes:     likes,
		comments:  comments,
		validator: validation.NewValidator(),
	}
}

// ListPosts godoc
// @Summary List posts
// @Description Returns posts newest first, optionally filtered by category
// @Tags posts
// @Produce json
// @Param category query string false "Category"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.PostListResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /posts [get]
func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	p := paginationFrom(c, service.DefaultPostPageSize)
	posts, total, err := h.posts.ListPosts(c.Context(), domain.PostFilter{
		Category: c.Query("category"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	})
	if err != nil {
		return err
	}

	out := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, dto.ToPostResponse(&posts[i]))
	}
	return c.JSON(dto.PostListResponse{Posts: out, Pagination: dto.NewPaginationInfo(total, p)})
}

// GetPost godoc
// @Summary Get a post
// @Description Returns a post with its poll. Authenticated callers also get their vote, like and gate decision.
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.PostResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	view, err := h.posts.GetPost(c.Context(), pathID(c), optionalActor(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.ToPostViewResponse(view))
}

// CreatePost godoc
// @Summary Create a post
// @Description Admin only. Creates a post with an optional quiz gate and poll.
// @Tags posts
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePostRequest true "Post"
// @Success 201 {object} dto.PostResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}
	if errors := h.validator.ValidateCreatePost(&req); len(errors) > 0 {
		return errors
	}

	post, err := h.posts.CreatePost(c.Context(), actor, req.ToPost())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToPostResponse(post))
}

// UpdatePost godoc
// @Summary Edit a post
// @Tags posts
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body dto.UpdatePostRequest true "Post"
// @Success 200 {object} dto.PostResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}
	if errors := h.validator.ValidateUpdatePost(&req); len(errors) > 0 {
		return errors
	}

	post, err := h.posts.UpdatePost(c.Context(), actor, req.ToPost(pathID(c)))
	if err != nil {
		return err
	}
	return c.JSON(dto.ToPostResponse(post))
}

// DeletePost godoc
// @Summary Delete a post
// @Description Removes the post with its poll, votes, likes and comments
// @Tags posts
// @Security ApiKeyAuth
// @Param id path string true "Post ID"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	if err := h.posts.DeletePost(c.Context(), actor, pathID(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Vote godoc
// @Summary Vote on a post's poll
// @Description Records or switches the caller's vote. Re-voting the same option is a no-op.
// @Tags polls
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body dto.VoteRequest true "Option"
// @Success 200 {object} dto.VoteResponse
// @Failure 400 {object} middleware.ErrorResponse "Poll ended or option invalid"
// @Failure 403 {object} middleware.ErrorResponse "Quiz requirement not met"
// @Failure 404 {object} middleware.ErrorResponse
// @Router /posts/{id}/vote [post]
func (h *PostHandler) Vote(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}
	if errors := h.validator.ValidateID("option_id", req.OptionID); len(errors) > 0 {
		return errors
	}

	outcome, err := h.votes.Vote(c.Context(), actor, pathID(c), req.OptionID)
	if err != nil {
		return err
	}
	return c.JSON(dto.ToVoteResponse(outcome))
}

// RemoveVote godoc
// @Summary Withdraw a vote
// @Tags polls
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.PollResponse
// @Failure 404 {object} middleware.ErrorResponse "No vote to remove"
// @Router /posts/{id}/vote [delete]
func (h *PostHandler) RemoveVote(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	poll, err := h.votes.RemoveVote(c.Context(), actor, pathID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.ToPollResponse(poll))
}

// LikePost godoc
// @Summary Toggle a like on a post
// @Tags posts
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.LikeResponse
// @Failure 403 {object} middleware.ErrorResponse "Quiz requirement not met"
// @Failure 404 {object} middleware.ErrorResponse
// @Router /posts/{id}/like [post]
func (h *PostHandler) LikePost(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	state, err := h.likes.ToggleLike(c.Context(), actor, domain.LikeTargetPost, pathID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.LikeResponse{Likes: state.Likes, IsLiked: state.IsLiked})
}

// CheckGate godoc
// @Summary Check participation on a post
// @Description Reports whether the caller passes the post's quiz gate
// @Tags posts
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.GateDecisionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /posts/{id}/gate [get]
func (h *PostHandler) CheckGate(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	decision, err := h.posts.CheckGate(c.Context(), actor.UserID, pathID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.GateDecisionResponse{Allowed: decision.Allowed, Message: decision.Message})
}

// ListComments godoc
// @Summary List a post's comment threads
// @Description Root comments newest first, each with its replies oldest first
// @Tags comments
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {array} dto.CommentThreadResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /posts/{id}/comments [get]
func (h *PostHandler) ListComments(c *fiber.Ctx) error {
	viewerID := ""
	if actor := optionalActor(c); actor != nil {
		viewerID = actor.UserID
	}
	threads, err := h.comments.ListComments(c.Context(), pathID(c), viewerID)
	if err != nil {
		return err
	}
	return c.JSON(dto.ToCommentThreadResponses(threads))
}
