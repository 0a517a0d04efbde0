package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"votist/internal/domain"
)

// likeTable describes the fact table and counter column of a like target.
type likeTable struct {
	table     string
	fkColumn  string
	counterOn string
}

var likeTables = map[domain.LikeTarget]likeTable{
	domain.LikeTargetPost:    {table: "post_likes", fkColumn: "post_id", counterOn: "posts"},
	domain.LikeTargetComment: {table: "comment_likes", fkColumn: "comment_id", counterOn: "comments"},
}

func lookupLikeTable(target domain.LikeTarget) (likeTable, error) {
	t, ok := likeTables[target]
	if !ok {
		return likeTable{}, fmt.Errorf("unsupported like target %q", target)
	}
	return t, nil
}

// sqlxLikeRepository implements domain.LikeRepository.
type sqlxLikeRepository struct {
	db DBTX
}

func NewSQLXLikeRepository(db DBTX) domain.LikeRepository {
	return &sqlxLikeRepository{db: db}
}

func (r *sqlxLikeRepository) Delete(ctx context.Context, target domain.LikeTarget, userID, targetID string) (bool, error) {
	t, err := lookupLikeTable(target)
	if err != nil {
		return false, err
	}
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND %s = $2`, t.table, t.fkColumn), userID, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *sqlxLikeRepository) Insert(ctx context.Context, target domain.LikeTarget, userID, targetID string, now time.Time) (bool, error) {
	t, err := lookupLikeTable(target)
	if err != nil {
		return false, err
	}
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (user_id, %s, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, t.table, t.fkColumn),
		userID, targetID, now)
	if err != nil {
		return false, fmt.Errorf("failed to insert like: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *sqlxLikeRepository) AdjustLikes(ctx context.Context, target domain.LikeTarget, targetID string, delta int) (int, error) {
	t, err := lookupLikeTable(target)
	if err != nil {
		return 0, err
	}
	var likes int
	err = GetExecutor(ctx, r.db).GetContext(ctx, &likes,
		fmt.Sprintf(`UPDATE %s SET likes = GREATEST(likes + $1, 0) WHERE id = $2 RETURNING likes`, t.counterOn), delta, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("like target %s: %w", targetID, sql.ErrNoRows)
		}
		return 0, fmt.Errorf("failed to adjust likes: %w", err)
	}
	return likes, nil
}

func (r *sqlxLikeRepository) CurrentLikes(ctx context.Context, target domain.LikeTarget, targetID string) (int, error) {
	t, err := lookupLikeTable(target)
	if err != nil {
		return 0, err
	}
	var likes int
	err = GetExecutor(ctx, r.db).GetContext(ctx, &likes, fmt.Sprintf(`SELECT likes FROM %s WHERE id = $1`, t.counterOn), targetID)
	if err != nil {
		return 0, fmt.Errorf("failed to read likes: %w", err)
	}
	return likes, nil
}

func (r *sqlxLikeRepository) IsLiked(ctx context.Context, target domain.LikeTarget, userID, targetID string) (bool, error) {
	t, err := lookupLikeTable(target)
	if err != nil {
		return false, err
	}
	var exists bool
	err = GetExecutor(ctx, r.db).GetContext(ctx, &exists,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE user_id = $1 AND %s = $2)`, t.table, t.fkColumn), userID, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return exists, nil
}

func (r *sqlxLikeRepository) LikedCommentIDs(ctx context.Context, userID, postID string) (map[string]bool, error) {
	var ids []string
	query := `SELECT cl.comment_id FROM comment_likes cl
		JOIN comments c ON c.id = cl.comment_id
		WHERE cl.user_id = $1 AND c.post_id = $2`
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &ids, query, userID, postID); err != nil {
		return nil, fmt.Errorf("failed to list liked comments: %w", err)
	}
	liked := make(map[string]bool, len(ids))
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
