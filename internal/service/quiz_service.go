package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"votist/internal/domain"
	"votist/internal/logger"

	"go.uber.org/zap"
)

const quizSearchLimit = 20

// QuizService covers quiz catalogue reads and admin authoring.
type QuizService interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	CreateQuiz(ctx context.Context, actor domain.Actor, quiz *domain.Quiz) (*domain.Quiz, error)
	UpdateSequence(ctx context.Context, actor domain.Actor, updates []domain.QuizSequenceUpdate) error
	SearchQuizzes(ctx context.Context, actor domain.Actor, query string) ([]domain.Quiz, error)
}

type quizService struct {
	quizRepo  domain.QuizRepository
	txManager domain.TransactionManager
}

func NewQuizService(quizRepo domain.QuizRepository, txManager domain.TransactionManager) QuizService {
	return &quizService{quizRepo: quizRepo, txManager: txManager}
}

func requireAdmin(actor domain.Actor) error {
	if !actor.IsAdmin {
		return domain.NewForbiddenError("admin access required")
	}
	return nil
}

func (s *quizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.quizRepo.ListEnabled(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list quizzes", err)
	}
	return quizzes, nil
}

func (s *quizService) CreateQuiz(ctx context.Context, actor domain.Actor, quiz *domain.Quiz) (*domain.Quiz, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	quiz.Title = strings.TrimSpace(quiz.Title)
	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	if quiz.PrerequisiteID != nil {
		prereq, err := s.quizRepo.GetByID(ctx, *quiz.PrerequisiteID)
		if err != nil {
			return nil, domain.NewInternalError("Failed to get prerequisite quiz", err)
		}
		if prereq == nil {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("prerequisite quiz %s does not exist", *quiz.PrerequisiteID))
		}
	}

	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewConflictError("quiz already exists")
		}
		return nil, domain.NewInternalError("Failed to create quiz", err)
	}
	logger.Get().Info("Quiz created",
		zap.String("quizID", quiz.ID),
		zap.Stringer("difficulty", quiz.Difficulty),
		zap.Int("sequence", quiz.Sequence),
	)
	return quiz, nil
}

func (s *quizService) UpdateSequence(ctx context.Context, actor domain.Actor, updates []domain.QuizSequenceUpdate) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if len(updates) == 0 {
		return domain.NewInvalidInputError("at least one sequence update is required")
	}
	seen := make(map[string]struct{}, len(updates))
	for _, u := range updates {
		if u.QuizID == "" {
			return domain.NewInvalidInputError("quiz id is required")
		}
		if u.Sequence < 0 {
			return domain.NewInvalidInputError("sequence cannot be negative")
		}
		if _, dup := seen[u.QuizID]; dup {
			return domain.NewInvalidInputError(fmt.Sprintf("quiz %s listed twice", u.QuizID))
		}
		seen[u.QuizID] = struct{}{}
	}

	return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.quizRepo.UpdateSequences(ctx, updates); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NewNotFoundError(err.Error())
			}
			return domain.NewInternalError("Failed to update quiz sequence", err)
		}
		return nil
	})
}

func (s *quizService) SearchQuizzes(ctx context.Context, actor domain.Actor, query string) ([]domain.Quiz, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	quizzes, err := s.quizRepo.Search(ctx, query, quizSearchLimit)
	if err != nil {
		return nil, domain.NewInternalError("Failed to search quizzes", err)
	}
	return quizzes, nil
}
