package service

import (
	"context"
	"encoding/json"
	"fmt"

	"votist/internal/domain"
	"votist/internal/logger"

	"go.uber.org/zap"
)

// ProgressService drives the per-user quiz state machine.
type ProgressService interface {
	// InitializeProgress seeds a row for every enabled quiz the user does not
	// track yet and returns how many rows were created. It is idempotent.
	InitializeProgress(ctx context.Context, userID string) (int, error)
	StartQuiz(ctx context.Context, userID, quizID string) (*domain.UserProgress, error)
	SubmitQuiz(ctx context.Context, userID, quizID string, score int, answers json.RawMessage) (*domain.QuizResult, error)
	ListProgress(ctx context.Context, userID string) ([]domain.ProgressEntry, error)
	GetResult(ctx context.Context, userID, quizID string) (*domain.QuizResult, error)
}

type progressService struct {
	quizRepo     domain.QuizRepository
	progressRepo domain.ProgressRepository
	txManager    domain.TransactionManager
	clock        Clock
}

func NewProgressService(
	quizRepo domain.QuizRepository,
	progressRepo domain.ProgressRepository,
	txManager domain.TransactionManager,
	clock Clock,
) ProgressService {
	if clock == nil {
		clock = SystemClock()
	}
	return &progressService{
		quizRepo:     quizRepo,
		progressRepo: progressRepo,
		txManager:    txManager,
		clock:        clock,
	}
}

// seedStatus is AVAILABLE when the quiz has no usable prerequisite or the
// prerequisite is already completed, LOCKED otherwise.
func seedStatus(quiz *domain.Quiz, enabled map[string]bool, statuses map[string]domain.ProgressStatus) domain.ProgressStatus {
	if quiz.PrerequisiteID == nil || !enabled[*quiz.PrerequisiteID] {
		return domain.StatusAvailable
	}
	if statuses[*quiz.PrerequisiteID] == domain.StatusCompleted {
		return domain.StatusAvailable
	}
	return domain.StatusLocked
}

func (s *progressService) InitializeProgress(ctx context.Context, userID string) (int, error) {
	quizzes, err := s.quizRepo.ListEnabled(ctx)
	if err != nil {
		return 0, domain.NewInternalError("Failed to list quizzes", err)
	}
	existing, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		return 0, domain.NewInternalError("Failed to load user progress", err)
	}

	enabled := make(map[string]bool, len(quizzes))
	for _, q := range quizzes {
		enabled[q.ID] = true
	}
	statuses := make(map[string]domain.ProgressStatus, len(existing))
	for _, e := range existing {
		statuses[e.Progress.QuizID] = e.Progress.Status
	}

	now := s.clock.Now()
	var rows []domain.UserProgress
	for i := range quizzes {
		quiz := &quizzes[i]
		if _, tracked := statuses[quiz.ID]; tracked {
			continue
		}
		rows = append(rows, domain.UserProgress{
			UserID:    userID,
			QuizID:    quiz.ID,
			Status:    seedStatus(quiz, enabled, statuses),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	inserted, err := s.progressRepo.InsertIfAbsent(ctx, rows)
	if err != nil {
		return inserted, domain.NewInternalError("Failed to initialize user progress", err)
	}
	logger.Get().Info("Initialized user progress",
		zap.String("userID", userID),
		zap.Int("candidates", len(rows)),
		zap.Int("inserted", inserted),
	)
	return inserted, nil
}

// loadEnabledQuiz treats disabled quizzes as missing.
func (s *progressService) loadEnabledQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get quiz", err)
	}
	if quiz == nil || !quiz.Enabled {
		return nil, domain.NewNotFoundError(fmt.Sprintf("quiz %s not found", quizID))
	}
	return quiz, nil
}

// lockedProgress returns the caller's row for quiz under a row lock, building
// an unsaved seed row when none exists.
func (s *progressService) lockedProgress(ctx context.Context, userID string, quiz *domain.Quiz) (*domain.UserProgress, error) {
	progress, err := s.progressRepo.GetForUpdate(ctx, userID, quiz.ID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load quiz progress", err)
	}
	if progress != nil {
		return progress, nil
	}

	status := domain.StatusAvailable
	if quiz.PrerequisiteID != nil {
		prereq, err := s.quizRepo.GetByID(ctx, *quiz.PrerequisiteID)
		if err != nil {
			return nil, domain.NewInternalError("Failed to get prerequisite quiz", err)
		}
		if prereq != nil && prereq.Enabled {
			prereqProgress, err := s.progressRepo.Get(ctx, userID, prereq.ID)
			if err != nil {
				return nil, domain.NewInternalError("Failed to load prerequisite progress", err)
			}
			if prereqProgress == nil || prereqProgress.Status != domain.StatusCompleted {
				status = domain.StatusLocked
			}
		}
	}
	now := s.clock.Now()
	return &domain.UserProgress{UserID: userID, QuizID: quiz.ID, Status: status, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *progressService) StartQuiz(ctx context.Context, userID, quizID string) (*domain.UserProgress, error) {
	quiz, err := s.loadEnabledQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	var result *domain.UserProgress
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		progress, err := s.lockedProgress(ctx, userID, quiz)
		if err != nil {
			return err
		}

		switch progress.Status {
		case domain.StatusLocked:
			return domain.NewForbiddenError("prerequisite not completed")
		case domain.StatusAvailable:
			now := s.clock.Now()
			progress.Status = domain.StatusInProgress
			progress.StartedAt = &now
			progress.UpdatedAt = now
			if err := s.progressRepo.Save(ctx, progress); err != nil {
				return domain.NewInternalError("Failed to start quiz", err)
			}
		}
		result = progress
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *progressService) SubmitQuiz(ctx context.Context, userID, quizID string, score int, answers json.RawMessage) (*domain.QuizResult, error) {
	if score < 0 || score > domain.MaxScore {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("score must be between 0 and %d", domain.MaxScore))
	}
	if len(answers) > 0 && !json.Valid(answers) {
		return nil, domain.NewInvalidInputError("answers must be valid JSON")
	}
	quiz, err := s.loadEnabledQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	passed := quiz.Passes(score)
	var result *domain.QuizResult
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		progress, err := s.lockedProgress(ctx, userID, quiz)
		if err != nil {
			return err
		}
		if progress.Status == domain.StatusLocked {
			return domain.NewForbiddenError("prerequisite not completed")
		}

		next := domain.StatusAvailable
		if passed {
			next = domain.StatusCompleted
		}
		if progress.Status != next && !progress.Status.CanTransition(next) {
			return domain.NewConflictError(fmt.Sprintf("cannot move quiz from %s to %s", progress.Status, next))
		}

		now := s.clock.Now()
		progress.Status = next
		progress.Score = score
		progress.IsCompleted = passed
		progress.Answers = answers
		progress.UpdatedAt = now
		if passed {
			progress.CompletedAt = &now
		} else {
			progress.CompletedAt = nil
		}
		if err := s.progressRepo.Save(ctx, progress); err != nil {
			return domain.NewInternalError("Failed to save quiz submission", err)
		}

		var unlocked []string
		if passed {
			unlocked, err = s.unlockSuccessors(ctx, userID, quiz)
			if err != nil {
				return err
			}
		}
		result = &domain.QuizResult{
			Progress:       *progress,
			Passed:         passed,
			PassingScore:   quiz.PassingScore,
			UnlockedQuizID: unlocked,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Quiz submitted",
		zap.String("userID", userID),
		zap.String("quizID", quizID),
		zap.Int("score", score),
		zap.Bool("passed", passed),
		zap.Strings("unlocked", result.UnlockedQuizID),
	)
	return result, nil
}

// unlockSuccessors opens every quiz chained to quiz. A quiz with no chained
// successor opens the next unchained quiz of its tier instead.
func (s *progressService) unlockSuccessors(ctx context.Context, userID string, quiz *domain.Quiz) ([]string, error) {
	successors, err := s.quizRepo.FindSuccessors(ctx, quiz.ID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to find next quizzes", err)
	}
	if len(successors) == 0 {
		next, err := s.quizRepo.FindNextInTier(ctx, quiz)
		if err != nil {
			return nil, domain.NewInternalError("Failed to find next quiz in tier", err)
		}
		if next != nil {
			successors = append(successors, *next)
		}
	}

	now := s.clock.Now()
	unlocked := []string{}
	for _, next := range successors {
		ok, err := s.progressRepo.Unlock(ctx, userID, next.ID, now)
		if err != nil {
			return nil, domain.NewInternalError("Failed to unlock quiz", err)
		}
		if ok {
			unlocked = append(unlocked, next.ID)
		}
	}
	return unlocked, nil
}

func (s *progressService) ListProgress(ctx context.Context, userID string) ([]domain.ProgressEntry, error) {
	entries, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list user progress", err)
	}
	return entries, nil
}

func (s *progressService) GetResult(ctx context.Context, userID, quizID string) (*domain.QuizResult, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("quiz %s not found", quizID))
	}
	progress, err := s.progressRepo.Get(ctx, userID, quizID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load quiz progress", err)
	}
	if progress == nil || progress.Status == domain.StatusLocked {
		return nil, domain.NewNotFoundError("no result recorded for this quiz")
	}
	return &domain.QuizResult{
		Progress:     *progress,
		Passed:       progress.IsCompleted && quiz.Passes(progress.Score),
		PassingScore: quiz.PassingScore,
	}, nil
}
