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

const voteColumns = `id, user_id, post_id, option_id, created_at, updated_at`

// sqlxVoteRepository implements domain.VoteRepository. Counter writes are
// relative (col = col + delta) so they never lose concurrent updates.
type sqlxVoteRepository struct {
	db DBTX
}

func NewSQLXVoteRepository(db DBTX) domain.VoteRepository {
	return &sqlxVoteRepository{db: db}
}

func (r *sqlxVoteRepository) LockPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	var poll models.Poll
	err := GetExecutor(ctx, r.db).GetContext(ctx, &poll, `SELECT `+pollColumns+` FROM polls WHERE id = $1 FOR UPDATE`, pollID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock poll: %w", err)
	}
	return toDomainPoll(&poll, nil), nil
}

func (r *sqlxVoteRepository) GetPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	return loadPoll(ctx, GetExecutor(ctx, r.db), `SELECT `+pollColumns+` FROM polls WHERE id = $1`, pollID)
}

func (r *sqlxVoteRepository) FindVote(ctx context.Context, userID, postID string) (*domain.Vote, error) {
	var vote models.Vote
	err := GetExecutor(ctx, r.db).GetContext(ctx, &vote, `SELECT `+voteColumns+` FROM votes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}
	return toDomainVote(&vote), nil
}

func (r *sqlxVoteRepository) InsertVote(ctx context.Context, vote *domain.Vote) error {
	if vote.ID == "" {
		vote.ID = util.NewULID()
	}
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `INSERT INTO votes (`+voteColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		vote.ID, vote.UserID, vote.PostID, vote.OptionID, vote.CreatedAt, vote.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to insert vote: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

func (r *sqlxVoteRepository) UpdateVoteOption(ctx context.Context, voteID, optionID string, now time.Time) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `UPDATE votes SET option_id = $1, updated_at = $2 WHERE id = $3`, optionID, now, voteID)
	if err != nil {
		return fmt.Errorf("failed to update vote: %w", err)
	}
	return nil
}

func (r *sqlxVoteRepository) DeleteVote(ctx context.Context, voteID string) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM votes WHERE id = $1`, voteID)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}

func (r *sqlxVoteRepository) AdjustOptionVotes(ctx context.Context, optionID string, delta int) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `UPDATE poll_options SET votes = votes + $1 WHERE id = $2`, delta, optionID)
	if err != nil {
		return fmt.Errorf("failed to adjust option votes: %w", err)
	}
	return nil
}

func (r *sqlxVoteRepository) AdjustTotalVotes(ctx context.Context, pollID string, delta int) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `UPDATE polls SET total_votes = total_votes + $1 WHERE id = $2`, delta, pollID)
	if err != nil {
		return fmt.Errorf("failed to adjust total votes: %w", err)
	}
	return nil
}
