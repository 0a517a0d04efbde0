package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"votist/internal/domain"
	"votist/internal/repository/models"
)

const progressColumns = `user_id, quiz_id, status, score, is_completed, completed_at, started_at, answers, created_at, updated_at`

const progressWithQuizSelect = `SELECT
		p.user_id, p.quiz_id, p.status, p.score, p.is_completed, p.completed_at, p.started_at, p.answers, p.created_at, p.updated_at,
		q.title AS q_title, q.description AS q_description, q.difficulty AS q_difficulty,
		q.passing_score AS q_passing_score, q.enabled AS q_enabled, q.sequence AS q_sequence,
		q.prerequisite_id AS q_prerequisite_id
	FROM user_progress p
	JOIN quizzes q ON q.id = p.quiz_id`

// sqlxProgressRepository implements domain.ProgressRepository.
type sqlxProgressRepository struct {
	db DBTX
}

func NewSQLXProgressRepository(db DBTX) domain.ProgressRepository {
	return &sqlxProgressRepository{db: db}
}

func (r *sqlxProgressRepository) Get(ctx context.Context, userID, quizID string) (*domain.UserProgress, error) {
	return r.get(ctx, `SELECT `+progressColumns+` FROM user_progress WHERE user_id = $1 AND quiz_id = $2`, userID, quizID)
}

func (r *sqlxProgressRepository) GetForUpdate(ctx context.Context, userID, quizID string) (*domain.UserProgress, error) {
	return r.get(ctx, `SELECT `+progressColumns+` FROM user_progress WHERE user_id = $1 AND quiz_id = $2 FOR UPDATE`, userID, quizID)
}

func (r *sqlxProgressRepository) get(ctx context.Context, query, userID, quizID string) (*domain.UserProgress, error) {
	var row models.UserProgress
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &row, query, userID, quizID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	return toDomainProgress(&row), nil
}

func (r *sqlxProgressRepository) ListByUser(ctx context.Context, userID string) ([]domain.ProgressEntry, error) {
	return r.list(ctx, progressWithQuizSelect+` WHERE p.user_id = $1 ORDER BY q.difficulty, q.sequence, q.id`, userID)
}

func (r *sqlxProgressRepository) ListCompleted(ctx context.Context, userID string) ([]domain.ProgressEntry, error) {
	return r.list(ctx, progressWithQuizSelect+` WHERE p.user_id = $1 AND p.is_completed ORDER BY q.difficulty, q.sequence, q.id`, userID)
}

func (r *sqlxProgressRepository) list(ctx context.Context, query, userID string) ([]domain.ProgressEntry, error) {
	var rows []models.ProgressWithQuiz
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list user progress: %w", err)
	}
	entries := make([]domain.ProgressEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, toDomainProgressEntry(&rows[i]))
	}
	return entries, nil
}

func (r *sqlxProgressRepository) InsertIfAbsent(ctx context.Context, rows []domain.UserProgress) (int, error) {
	exec := GetExecutor(ctx, r.db)
	query := `INSERT INTO user_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, quiz_id) DO NOTHING`

	inserted := 0
	for i := range rows {
		m := fromDomainProgress(&rows[i])
		res, err := exec.ExecContext(ctx, query,
			m.UserID, m.QuizID, m.Status, m.Score, m.IsCompleted, m.CompletedAt, m.StartedAt, m.Answers, m.CreatedAt, m.UpdatedAt)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert user progress: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (r *sqlxProgressRepository) Save(ctx context.Context, progress *domain.UserProgress) error {
	m := fromDomainProgress(progress)
	query := `INSERT INTO user_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, quiz_id) DO UPDATE SET
			status = EXCLUDED.status,
			score = EXCLUDED.score,
			is_completed = EXCLUDED.is_completed,
			completed_at = EXCLUDED.completed_at,
			started_at = EXCLUDED.started_at,
			answers = EXCLUDED.answers,
			updated_at = EXCLUDED.updated_at`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		m.UserID, m.QuizID, m.Status, m.Score, m.IsCompleted, m.CompletedAt, m.StartedAt, m.Answers, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save user progress: %w", err)
	}
	return nil
}

func (r *sqlxProgressRepository) Unlock(ctx context.Context, userID, quizID string, now time.Time) (bool, error) {
	query := `INSERT INTO user_progress (user_id, quiz_id, status, score, is_completed, created_at, updated_at)
		VALUES ($1, $2, $3, 0, FALSE, $4, $4)
		ON CONFLICT (user_id, quiz_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
		WHERE user_progress.status = $5`
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, userID, quizID, string(domain.StatusAvailable), now, string(domain.StatusLocked))
	if err != nil {
		return false, fmt.Errorf("failed to unlock quiz: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
