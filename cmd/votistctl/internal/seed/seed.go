// Package seed loads the quiz catalog from a JSON file.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"votist/internal/domain"
	"votist/internal/logger"
	"votist/internal/util"

	"go.uber.org/zap"
)

// SeedQuiz is one catalog entry. IDs are fixed so reruns are idempotent.
type SeedQuiz struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Difficulty     string  `json:"difficulty"`
	PassingScore   int     `json:"passing_score"`
	Sequence       int     `json:"sequence"`
	PrerequisiteID *string `json:"prerequisite_id,omitempty"`
	Enabled        *bool   `json:"enabled,omitempty"`
}

// Load decodes and validates a seed file. Prerequisites must reference an
// entry that appears earlier in the file.
func Load(r io.Reader) ([]domain.Quiz, error) {
	var entries []SeedQuiz
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode seed data: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	quizzes := make([]domain.Quiz, 0, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("seed entry %d: id is required", i)
		}
		if !util.IsULID(e.ID) {
			return nil, fmt.Errorf("seed entry %d: id %q is not a ULID", i, e.ID)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("seed entry %d: duplicate id %s", i, e.ID)
		}
		difficulty, err := domain.ParseDifficulty(e.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("seed entry %s: %w", e.ID, err)
		}
		if e.PrerequisiteID != nil && !seen[*e.PrerequisiteID] {
			return nil, fmt.Errorf("seed entry %s: prerequisite %s must be listed before it", e.ID, *e.PrerequisiteID)
		}
		enabled := true
		if e.Enabled != nil {
			enabled = *e.Enabled
		}
		quiz := domain.Quiz{
			ID:             e.ID,
			Title:          e.Title,
			Description:    e.Description,
			Difficulty:     difficulty,
			PassingScore:   e.PassingScore,
			Sequence:       e.Sequence,
			PrerequisiteID: e.PrerequisiteID,
			Enabled:        enabled,
		}
		if err := quiz.Validate(); err != nil {
			return nil, fmt.Errorf("seed entry %s: %w", e.ID, err)
		}
		seen[e.ID] = true
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

// Apply inserts quizzes in one transaction, skipping ids that already exist.
// It returns how many were created.
func Apply(ctx context.Context, repo domain.QuizRepository, txManager domain.TransactionManager, quizzes []domain.Quiz) (int, error) {
	log := logger.Get()
	created := 0
	err := txManager.WithTransaction(ctx, func(ctx context.Context) error {
		created = 0
		for i := range quizzes {
			quiz := quizzes[i]
			if err := repo.Create(ctx, &quiz); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					log.Info("Quiz already seeded", zap.String("id", quiz.ID))
					continue
				}
				return fmt.Errorf("failed to seed quiz %s: %w", quiz.ID, err)
			}
			log.Info("Seeded quiz", zap.String("id", quiz.ID), zap.String("title", quiz.Title), zap.String("difficulty", quiz.Difficulty.String()))
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
