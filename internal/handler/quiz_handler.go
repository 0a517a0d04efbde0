package handler

import (
	"votist/internal/dto"
	"votist/internal/logger"
	"votist/internal/service"
	"votist/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz catalog and progress requests
type QuizHandler struct {
	quizzes   service.QuizService
	progress  service.ProgressService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(quizzes service.QuizService, progress service.ProgressService) *QuizHandler {
	return &QuizHandler{
		quizzes:   quizzes,
		progress:  progress,
		validator: validation.NewValidator(),
	}
}

// ListQuizzes godoc
// @Summary List quizzes
// @Description Returns enabled quizzes ordered by difficulty and sequence
// @Tags quiz
// @Produce json
// @Success 200 {array} dto.QuizResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	quizzes, err := h.quizzes.ListQuizzes(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.ToQuizResponses(quizzes))
}

// CreateQuiz godoc
// @Summary Create a quiz
// @Tags quiz
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateQuizRequest true "Quiz"
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}
	if errors := h.validator.ValidateCreateQuiz(&req); len(errors) > 0 {
		return errors
	}

	quiz, err := h.quizzes.CreateQuiz(c.Context(), actor, req.ToQuiz())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToQuizResponse(quiz))
}

// UpdateSequence godoc
// @Summary Reorder quizzes
// @Tags quiz
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateSequenceRequest true "New positions"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/sequence [put]
func (h *QuizHandler) UpdateSequence(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateSequenceRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}
	if err := h.quizzes.UpdateSequence(c.Context(), actor, req.ToSequenceUpdates()); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "sequence updated"})
}

// SearchQuizzes godoc
// @Summary Search quizzes by title
// @Description Admin lookup used when configuring gates and prerequisites
// @Tags quiz
// @Security ApiKeyAuth
// @Produce json
// @Param q query string true "Title fragment"
// @Success 200 {array} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /quizzes/search [get]
func (h *QuizHandler) SearchQuizzes(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	q := c.Query("q")
	if errors := h.validator.ValidateSearchQuery(q); len(errors) > 0 {
		return errors
	}
	quizzes, err := h.quizzes.SearchQuizzes(c.Context(), actor, q)
	if err != nil {
		return err
	}
	return c.JSON(dto.ToQuizResponses(quizzes))
}

// StartQuiz godoc
// @Summary Start a quiz
// @Tags progress
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.ProgressResponse
// @Failure 403 {object} middleware.ErrorResponse "Quiz is locked"
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/start [post]
func (h *QuizHandler) StartQuiz(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	progress, err := h.progress.StartQuiz(c.Context(), actor.UserID, pathID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.ToProgressResponse(progress))
}

// SubmitQuiz godoc
// @Summary Submit a graded attempt
// @Description Records the score; a pass completes the quiz and unlocks dependents
// @Tags progress
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param request body dto.SubmitQuizRequest true "Attempt"
// @Success 200 {object} dto.QuizResultResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse "Quiz is locked"
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/submit [post]
func (h *QuizHandler) SubmitQuiz(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.SubmitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}
	if errors := h.validator.ValidateSubmitQuiz(&req); len(errors) > 0 {
		return errors
	}

	quizID := pathID(c)
	result, err := h.progress.SubmitQuiz(c.Context(), actor.UserID, quizID, *req.Score, req.Answers)
	if err != nil {
		return err
	}
	logger.Get().Info("Quiz submitted",
		zap.String("userID", actor.UserID),
		zap.String("quizID", quizID),
		zap.Int("score", *req.Score),
		zap.Bool("passed", result.Passed),
	)
	return c.JSON(dto.ToQuizResultResponse(result))
}

// GetResult godoc
// @Summary Get the caller's result for a quiz
// @Tags progress
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizResultResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/result [get]
func (h *QuizHandler) GetResult(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	result, err := h.progress.GetResult(c.Context(), actor.UserID, pathID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.ToQuizResultResponse(result))
}

// ListProgress godoc
// @Summary List the caller's quiz progress
// @Tags progress
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} dto.ProgressResponse
// @Router /progress [get]
func (h *QuizHandler) ListProgress(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	entries, err := h.progress.ListProgress(c.Context(), actor.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.ToProgressResponses(entries))
}

// InitProgress godoc
// @Summary Seed progress rows
// @Description Creates progress for every enabled quiz the caller has not seen. Idempotent.
// @Tags progress
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.InitProgressResponse
// @Router /progress/init [post]
func (h *QuizHandler) InitProgress(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	created, err := h.progress.InitializeProgress(c.Context(), actor.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.InitProgressResponse{Created: created})
}
