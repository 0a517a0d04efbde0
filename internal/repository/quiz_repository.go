package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"votist/internal/domain"
	"votist/internal/repository/models"
	"votist/internal/util"

	"github.com/jmoiron/sqlx"
)

const quizColumns = `id, title, description, difficulty, passing_score, enabled, sequence, prerequisite_id, created_at, updated_at`

// QuizDatabaseAdapter implements domain.QuizRepository.
type QuizDatabaseAdapter struct {
	db DBTX
}

func NewQuizDatabaseAdapter(db DBTX) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

func (a *QuizDatabaseAdapter) GetByID(ctx context.Context, id string) (*domain.Quiz, error) {
	var quiz models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE id = $1`
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &quiz, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by id: %w", err)
	}
	return toDomainQuiz(&quiz), nil
}

func (a *QuizDatabaseAdapter) ListEnabled(ctx context.Context) ([]domain.Quiz, error) {
	var rows []models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE enabled ORDER BY difficulty, sequence, id`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list enabled quizzes: %w", err)
	}
	return toDomainQuizzes(rows), nil
}

func (a *QuizDatabaseAdapter) ListEnabledByDifficulties(ctx context.Context, tiers []domain.Difficulty) ([]domain.Quiz, error) {
	if len(tiers) == 0 {
		return []domain.Quiz{}, nil
	}
	ranks := make([]int, len(tiers))
	for i, t := range tiers {
		ranks[i] = t.Rank()
	}

	query, args, err := sqlx.In(`SELECT `+quizColumns+` FROM quizzes WHERE enabled AND difficulty IN (?) ORDER BY difficulty, sequence, id`, ranks)
	if err != nil {
		return nil, fmt.Errorf("failed to build quiz tier query: %w", err)
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var rows []models.Quiz
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list quizzes by difficulty: %w", err)
	}
	return toDomainQuizzes(rows), nil
}

func (a *QuizDatabaseAdapter) FindSuccessors(ctx context.Context, quizID string) ([]domain.Quiz, error) {
	var rows []models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE prerequisite_id = $1 AND enabled ORDER BY sequence, id`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to find quiz successors: %w", err)
	}
	return toDomainQuizzes(rows), nil
}

func (a *QuizDatabaseAdapter) FindNextInTier(ctx context.Context, quiz *domain.Quiz) (*domain.Quiz, error) {
	var next models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes
		WHERE difficulty = $1 AND sequence > $2 AND enabled AND prerequisite_id IS NULL AND id <> $3
		ORDER BY sequence, id
		LIMIT 1`
	err := GetExecutor(ctx, a.db).GetContext(ctx, &next, query, quiz.Difficulty.Rank(), quiz.Sequence, quiz.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find next quiz in tier: %w", err)
	}
	return toDomainQuiz(&next), nil
}

func (a *QuizDatabaseAdapter) Create(ctx context.Context, quiz *domain.Quiz) error {
	now := time.Now()
	if quiz.ID == "" {
		quiz.ID = util.NewULID()
	}
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	query := `INSERT INTO quizzes (` + quizColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		quiz.ID, quiz.Title, util.StringToNullString(quiz.Description), int16(quiz.Difficulty), quiz.PassingScore,
		quiz.Enabled, quiz.Sequence, util.PtrToNullString(quiz.PrerequisiteID), quiz.CreatedAt, quiz.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create quiz: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

// UpdateSequences applies every update; callers wrap it in a transaction.
func (a *QuizDatabaseAdapter) UpdateSequences(ctx context.Context, updates []domain.QuizSequenceUpdate) error {
	exec := GetExecutor(ctx, a.db)
	now := time.Now()
	for _, u := range updates {
		res, err := exec.ExecContext(ctx, `UPDATE quizzes SET sequence = $1, updated_at = $2 WHERE id = $3`, u.Sequence, now, u.QuizID)
		if err != nil {
			return fmt.Errorf("failed to update quiz sequence: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("quiz %s: %w", u.QuizID, sql.ErrNoRows)
		}
	}
	return nil
}

func (a *QuizDatabaseAdapter) Search(ctx context.Context, query string, limit int) ([]domain.Quiz, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	var rows []models.Quiz
	sqlQuery := `SELECT ` + quizColumns + ` FROM quizzes
		WHERE title ILIKE $1 OR description ILIKE $1
		ORDER BY difficulty, sequence, id
		LIMIT $2`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, sqlQuery, pattern, limit); err != nil {
		return nil, fmt.Errorf("failed to search quizzes: %w", err)
	}
	return toDomainQuizzes(rows), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
