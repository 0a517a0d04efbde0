package repository

import (
	"context"
	"fmt"

	"votist/internal/domain"
)

// Each statement rewrites only rows whose counter disagrees with its fact table.
const (
	reconcileOptionVotes = `UPDATE poll_options o SET votes = c.n
		FROM (SELECT o2.id, COUNT(v.id) AS n FROM poll_options o2 LEFT JOIN votes v ON v.option_id = o2.id GROUP BY o2.id) c
		WHERE o.id = c.id AND o.votes <> c.n`
	reconcileTotalVotes = `UPDATE polls p SET total_votes = c.n
		FROM (SELECT p2.id, COUNT(v.id) AS n FROM polls p2 LEFT JOIN votes v ON v.post_id = p2.post_id GROUP BY p2.id) c
		WHERE p.id = c.id AND p.total_votes <> c.n`
	reconcilePostLikes = `UPDATE posts p SET likes = c.n
		FROM (SELECT p2.id, COUNT(l.user_id) AS n FROM posts p2 LEFT JOIN post_likes l ON l.post_id = p2.id GROUP BY p2.id) c
		WHERE p.id = c.id AND p.likes <> c.n`
	reconcileCommentLikes = `UPDATE comments cm SET likes = c.n
		FROM (SELECT c2.id, COUNT(l.user_id) AS n FROM comments c2 LEFT JOIN comment_likes l ON l.comment_id = c2.id GROUP BY c2.id) c
		WHERE cm.id = c.id AND cm.likes <> c.n`
)

// sqlxMaintenanceRepository implements domain.MaintenanceRepository.
type sqlxMaintenanceRepository struct {
	db DBTX
}

func NewSQLXMaintenanceRepository(db DBTX) domain.MaintenanceRepository {
	return &sqlxMaintenanceRepository{db: db}
}

// ReconcileCounters recomputes denormalized counters from their fact tables.
// Run it inside a transaction to get a consistent snapshot.
func (r *sqlxMaintenanceRepository) ReconcileCounters(ctx context.Context) (domain.CounterDrift, error) {
	exec := GetExecutor(ctx, r.db)
	var drift domain.CounterDrift

	steps := []struct {
		name  string
		query string
		dest  *int64
	}{
		{"poll option votes", reconcileOptionVotes, &drift.PollOptions},
		{"poll total votes", reconcileTotalVotes, &drift.Polls},
		{"post likes", reconcilePostLikes, &drift.PostLikes},
		{"comment likes", reconcileCommentLikes, &drift.CommentLikes},
	}
	for _, step := range steps {
		res, err := exec.ExecContext(ctx, step.query)
		if err != nil {
			return drift, fmt.Errorf("failed to reconcile %s: %w", step.name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return drift, fmt.Errorf("failed to get rows affected: %w", err)
		}
		*step.dest = n
	}
	return drift, nil
}
