package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"votist/internal/domain"
)

// LikeService toggles likes on posts and comments.
type LikeService interface {
	ToggleLike(ctx context.Context, actor domain.Actor, target domain.LikeTarget, targetID string) (*domain.LikeState, error)
}

type likeService struct {
	postRepo    domain.PostRepository
	commentRepo domain.CommentRepository
	likeRepo    domain.LikeRepository
	gates       GateService
	txManager   domain.TransactionManager
	clock       Clock
}

func NewLikeService(
	postRepo domain.PostRepository,
	commentRepo domain.CommentRepository,
	likeRepo domain.LikeRepository,
	gates GateService,
	txManager domain.TransactionManager,
	clock Clock,
) LikeService {
	if clock == nil {
		clock = SystemClock()
	}
	return &likeService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		gates:       gates,
		txManager:   txManager,
		clock:       clock,
	}
}

// owningPost returns the post whose gate governs a like on target.
func (s *likeService) owningPost(ctx context.Context, target domain.LikeTarget, targetID string) (*domain.Post, error) {
	postID := targetID
	if target == domain.LikeTargetComment {
		comment, err := s.commentRepo.GetByID(ctx, targetID)
		if err != nil {
			return nil, domain.NewInternalError("Failed to get comment", err)
		}
		if comment == nil {
			return nil, domain.NewNotFoundError(fmt.Sprintf("comment %s not found", targetID))
		}
		postID = comment.PostID
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get post", err)
	}
	if post == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("post %s not found", postID))
	}
	return post, nil
}

func (s *likeService) ToggleLike(ctx context.Context, actor domain.Actor, target domain.LikeTarget, targetID string) (*domain.LikeState, error) {
	if !target.Valid() {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("unsupported like target %q", target))
	}
	post, err := s.owningPost(ctx, target, targetID)
	if err != nil {
		return nil, err
	}
	decision, err := s.gates.MeetsPostQuizGate(ctx, actor.UserID, post)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, domain.NewForbiddenError(decision.Message)
	}

	state := &domain.LikeState{}
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		removed, err := s.likeRepo.Delete(ctx, target, actor.UserID, targetID)
		if err != nil {
			return domain.NewInternalError("Failed to remove like", err)
		}
		if removed {
			state.Likes, err = s.likeRepo.AdjustLikes(ctx, target, targetID, -1)
			state.IsLiked = false
			return likeCounterError(err, targetID)
		}

		inserted, err := s.likeRepo.Insert(ctx, target, actor.UserID, targetID, s.clock.Now())
		if err != nil {
			return domain.NewInternalError("Failed to add like", err)
		}
		state.IsLiked = true
		if inserted {
			state.Likes, err = s.likeRepo.AdjustLikes(ctx, target, targetID, 1)
			return likeCounterError(err, targetID)
		}
		// A concurrent request already liked it; report the stored counter.
		state.Likes, err = s.likeRepo.CurrentLikes(ctx, target, targetID)
		return likeCounterError(err, targetID)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func likeCounterError(err error, targetID string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return domain.NewNotFoundError(fmt.Sprintf("like target %s not found", targetID))
	default:
		return domain.NewInternalError("Failed to update like count", err)
	}
}
