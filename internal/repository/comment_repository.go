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

const commentColumns = `id, post_id, author_id, parent_id, root_comment_id, content, likes, created_at, updated_at`

const commentWithAuthorSelect = `SELECT
		c.id, c.post_id, c.author_id, c.parent_id, c.root_comment_id, c.content, c.likes, c.created_at, c.updated_at,
		u.first_name AS author_first_name, u.last_name AS author_last_name,
		u.avatar_url AS author_avatar_url, u.is_admin AS author_is_admin
	FROM comments c
	JOIN users u ON u.id = c.author_id`

// sqlxCommentRepository implements domain.CommentRepository.
type sqlxCommentRepository struct {
	db DBTX
}

func NewSQLXCommentRepository(db DBTX) domain.CommentRepository {
	return &sqlxCommentRepository{db: db}
}

func (r *sqlxCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var row models.Comment
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &row, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment by id: %w", err)
	}
	return toDomainComment(&row), nil
}

func (r *sqlxCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = util.NewULID()
	}
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO comments (`+commentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		comment.ID, comment.PostID, comment.AuthorID,
		util.PtrToNullString(comment.ParentID), util.PtrToNullString(comment.RootCommentID),
		comment.Content, comment.Likes, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *sqlxCommentRepository) UpdateContent(ctx context.Context, id, content string, now time.Time) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, `UPDATE comments SET content = $1, updated_at = $2 WHERE id = $3`, content, now, id)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
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

// Delete removes the comment; replies and likes go with it through
// ON DELETE CASCADE.
func (r *sqlxCommentRepository) Delete(ctx context.Context, id string) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
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

// ListRoots returns top-level comments of a post, newest first.
func (r *sqlxCommentRepository) ListRoots(ctx context.Context, postID string) ([]domain.Comment, error) {
	return r.list(ctx, commentWithAuthorSelect+` WHERE c.post_id = $1 AND c.parent_id IS NULL ORDER BY c.created_at DESC, c.id DESC`, postID)
}

// ListReplies returns every reply of a post, oldest first.
func (r *sqlxCommentRepository) ListReplies(ctx context.Context, postID string) ([]domain.Comment, error) {
	return r.list(ctx, commentWithAuthorSelect+` WHERE c.post_id = $1 AND c.root_comment_id IS NOT NULL ORDER BY c.created_at ASC, c.id ASC`, postID)
}

func (r *sqlxCommentRepository) list(ctx context.Context, query, postID string) ([]domain.Comment, error) {
	var rows []models.CommentWithAuthor
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, postID); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	comments := make([]domain.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, toDomainCommentWithAuthor(&rows[i]))
	}
	return comments, nil
}
