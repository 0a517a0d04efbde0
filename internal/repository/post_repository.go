package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"votist/internal/domain"
	"votist/internal/repository/models"
	"votist/internal/util"
)

const postColumns = `id, author_id, title, content, category, tags, likes, quiz_gate_type, quiz_gate_difficulty, quiz_gate_quiz_id, created_at, updated_at`
const pollColumns = `id, post_id, question, ends_at, total_votes, required_difficulty`
const pollOptionColumns = `id, poll_id, text, position, votes`

// sqlxPostRepository implements domain.PostRepository.
type sqlxPostRepository struct {
	db DBTX
}

func NewSQLXPostRepository(db DBTX) domain.PostRepository {
	return &sqlxPostRepository{db: db}
}

// GetByID loads the post with its poll and ordered options.
func (r *sqlxPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	exec := GetExecutor(ctx, r.db)

	var row models.Post
	if err := exec.GetContext(ctx, &row, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}
	post := toDomainPost(&row)

	poll, err := loadPoll(ctx, exec, `SELECT `+pollColumns+` FROM polls WHERE post_id = $1`, id)
	if err != nil {
		return nil, err
	}
	post.Poll = poll
	return post, nil
}

// loadPoll fetches a poll by the given single-argument query plus its options.
func loadPoll(ctx context.Context, exec DBTX, query string, arg string) (*domain.Poll, error) {
	var poll models.Poll
	if err := exec.GetContext(ctx, &poll, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	var options []models.PollOption
	if err := exec.SelectContext(ctx, &options, `SELECT `+pollOptionColumns+` FROM poll_options WHERE poll_id = $1 ORDER BY position, id`, poll.ID); err != nil {
		return nil, fmt.Errorf("failed to get poll options: %w", err)
	}
	return toDomainPoll(&poll, options), nil
}

// List returns one page of posts, newest first, without polls.
func (r *sqlxPostRepository) List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, int, error) {
	exec := GetExecutor(ctx, r.db)

	var total int
	if err := exec.GetContext(ctx, &total, `SELECT COUNT(*) FROM posts WHERE ($1::text = '' OR category = $1)`, filter.Category); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	var rows []models.Post
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE ($1::text = '' OR category = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	if err := exec.SelectContext(ctx, &rows, query, filter.Category, filter.Limit, filter.Offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}

	posts := make([]domain.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, *toDomainPost(&rows[i]))
	}
	return posts, total, nil
}

func (r *sqlxPostRepository) Create(ctx context.Context, post *domain.Post) error {
	now := time.Now()
	if post.ID == "" {
		post.ID = util.NewULID()
	}
	post.CreatedAt = now
	post.UpdatedAt = now
	m := fromDomainPost(post)

	query := `INSERT INTO posts (` + postColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		m.ID, m.AuthorID, m.Title, m.Content, m.Category, m.Tags, m.Likes,
		m.QuizGateType, m.QuizGateDifficulty, m.QuizGateQuizID, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// CreatePoll inserts the poll and its options. Callers run it in the same
// transaction as the owning post.
func (r *sqlxPostRepository) CreatePoll(ctx context.Context, poll *domain.Poll) error {
	exec := GetExecutor(ctx, r.db)
	if poll.ID == "" {
		poll.ID = util.NewULID()
	}

	_, err := exec.ExecContext(ctx, `INSERT INTO polls (`+pollColumns+`) VALUES ($1, $2, $3, $4, 0, $5)`,
		poll.ID, poll.PostID, poll.Question, util.PtrToNullTime(poll.EndsAt), nullDifficulty(poll.RequiredDifficulty))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create poll: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("failed to create poll: %w", err)
	}
	poll.TotalVotes = 0

	for i := range poll.Options {
		opt := &poll.Options[i]
		if opt.ID == "" {
			opt.ID = util.NewULID()
		}
		opt.PollID = poll.ID
		opt.Position = i
		opt.Votes = 0
		_, err := exec.ExecContext(ctx, `INSERT INTO poll_options (`+pollOptionColumns+`) VALUES ($1, $2, $3, $4, 0)`,
			opt.ID, opt.PollID, opt.Text, opt.Position)
		if err != nil {
			return fmt.Errorf("failed to create poll option: %w", err)
		}
	}
	return nil
}

func (r *sqlxPostRepository) Update(ctx context.Context, post *domain.Post) error {
	post.UpdatedAt = time.Now()
	m := fromDomainPost(post)
	query := `UPDATE posts SET
			title = $1, content = $2, category = $3, tags = $4,
			quiz_gate_type = $5, quiz_gate_difficulty = $6, quiz_gate_quiz_id = $7, updated_at = $8
		WHERE id = $9`
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		m.Title, m.Content, m.Category, m.Tags, m.QuizGateType, m.QuizGateDifficulty, m.QuizGateQuizID, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the post; polls, votes, comments and likes cascade.
func (r *sqlxPostRepository) Delete(ctx context.Context, id string) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
