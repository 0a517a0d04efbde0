package service

import (
	"context"
	"fmt"

	"votist/internal/domain"
)

// GateService decides whether a user's quiz record satisfies a requirement.
type GateService interface {
	// MeetsQuizRequirement reports whether the user passed any quiz ranked at
	// or above required. A nil requirement always passes.
	MeetsQuizRequirement(ctx context.Context, userID string, required *domain.Difficulty) (bool, error)
	MeetsPostQuizGate(ctx context.Context, userID string, post *domain.Post) (domain.GateDecision, error)
	// HighestCompletedDifficulty returns nil when the user passed nothing.
	HighestCompletedDifficulty(ctx context.Context, userID string) (*domain.Difficulty, error)
}

type gateService struct {
	quizRepo     domain.QuizRepository
	progressRepo domain.ProgressRepository
}

func NewGateService(quizRepo domain.QuizRepository, progressRepo domain.ProgressRepository) GateService {
	return &gateService{quizRepo: quizRepo, progressRepo: progressRepo}
}

func (s *gateService) passedEntries(ctx context.Context, userID string) ([]domain.ProgressEntry, error) {
	completed, err := s.progressRepo.ListCompleted(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load completed quizzes", err)
	}
	passed := completed[:0]
	for _, entry := range completed {
		if entry.Passed() {
			passed = append(passed, entry)
		}
	}
	return passed, nil
}

func (s *gateService) MeetsQuizRequirement(ctx context.Context, userID string, required *domain.Difficulty) (bool, error) {
	if required == nil {
		return true, nil
	}
	passed, err := s.passedEntries(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, entry := range passed {
		if entry.Quiz.Difficulty.Rank() >= required.Rank() {
			return true, nil
		}
	}
	return false, nil
}

func (s *gateService) MeetsPostQuizGate(ctx context.Context, userID string, post *domain.Post) (domain.GateDecision, error) {
	switch gate := post.QuizGate().(type) {
	case domain.NoGate:
		return domain.Allow(), nil
	case domain.DifficultyGate:
		return s.meetsDifficultyGate(ctx, userID, gate)
	case domain.SpecificQuizGate:
		return s.meetsSpecificQuizGate(ctx, userID, gate)
	default:
		// QuizGate is sealed; decoding already folds unknown tags into NoGate.
		return domain.Allow(), nil
	}
}

func (s *gateService) meetsDifficultyGate(ctx context.Context, userID string, gate domain.DifficultyGate) (domain.GateDecision, error) {
	required, err := s.quizRepo.ListEnabledByDifficulties(ctx, gate.Difficulty.AtOrBelow())
	if err != nil {
		return domain.GateDecision{}, domain.NewInternalError("Failed to load gate quizzes", err)
	}
	if len(required) == 0 {
		return domain.Allow(), nil
	}

	passed, err := s.passedEntries(ctx, userID)
	if err != nil {
		return domain.GateDecision{}, err
	}
	passedIDs := make(map[string]struct{}, len(passed))
	for _, entry := range passed {
		passedIDs[entry.Quiz.ID] = struct{}{}
	}

	remaining := 0
	for _, quiz := range required {
		if _, ok := passedIDs[quiz.ID]; !ok {
			remaining++
		}
	}
	if remaining == 0 {
		return domain.Allow(), nil
	}
	return domain.Deny(fmt.Sprintf("Complete all %s level quizzes to participate (%d remaining)", gate.Difficulty, remaining)), nil
}

func (s *gateService) meetsSpecificQuizGate(ctx context.Context, userID string, gate domain.SpecificQuizGate) (domain.GateDecision, error) {
	quiz, err := s.quizRepo.GetByID(ctx, gate.QuizID)
	if err != nil {
		return domain.GateDecision{}, domain.NewInternalError("Failed to load gate quiz", err)
	}
	if quiz == nil {
		return domain.Allow(), nil
	}

	progress, err := s.progressRepo.Get(ctx, userID, quiz.ID)
	if err != nil {
		return domain.GateDecision{}, domain.NewInternalError("Failed to load quiz progress", err)
	}
	if progress != nil && progress.IsCompleted && quiz.Passes(progress.Score) {
		return domain.Allow(), nil
	}
	return domain.Deny(fmt.Sprintf("Pass the quiz %q to participate", quiz.Title)), nil
}

func (s *gateService) HighestCompletedDifficulty(ctx context.Context, userID string) (*domain.Difficulty, error) {
	passed, err := s.passedEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	var highest *domain.Difficulty
	for _, entry := range passed {
		d := entry.Quiz.Difficulty
		if highest == nil || d.Rank() > highest.Rank() {
			highest = &d
		}
	}
	return highest, nil
}
