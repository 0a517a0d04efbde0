package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"votist/internal/domain"
	"votist/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPostPageSize = 20
	MaxPostPageSize     = 50
)

// PostService manages posts and the poll they may own.
type PostService interface {
	CreatePost(ctx context.Context, actor domain.Actor, post *domain.Post) (*domain.Post, error)
	// GetPost returns the post with viewer-specific state when viewer is set.
	GetPost(ctx context.Context, postID string, viewer *domain.Actor) (*domain.PostView, error)
	ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, int, error)
	// UpdatePost replaces the editable fields of the stored post. The poll is
	// not editable once created.
	UpdatePost(ctx context.Context, actor domain.Actor, post *domain.Post) (*domain.Post, error)
	DeletePost(ctx context.Context, actor domain.Actor, postID string) error
	CheckGate(ctx context.Context, userID, postID string) (domain.GateDecision, error)
}

type postService struct {
	postRepo  domain.PostRepository
	quizRepo  domain.QuizRepository
	voteRepo  domain.VoteRepository
	likeRepo  domain.LikeRepository
	gates     GateService
	txManager domain.TransactionManager
}

func NewPostService(
	postRepo domain.PostRepository,
	quizRepo domain.QuizRepository,
	voteRepo domain.VoteRepository,
	likeRepo domain.LikeRepository,
	gates GateService,
	txManager domain.TransactionManager,
) PostService {
	return &postService{
		postRepo:  postRepo,
		quizRepo:  quizRepo,
		voteRepo:  voteRepo,
		likeRepo:  likeRepo,
		gates:     gates,
		txManager: txManager,
	}
}

// validateGate checks that a gate's payload points at something real.
func (s *postService) validateGate(ctx context.Context, gate domain.QuizGate) error {
	switch g := gate.(type) {
	case domain.DifficultyGate:
		if !g.Difficulty.Valid() {
			return domain.NewInvalidInputError("quiz gate difficulty is invalid")
		}
	case domain.SpecificQuizGate:
		if g.QuizID == "" {
			return domain.NewInvalidInputError("quiz gate requires a quiz id")
		}
		quiz, err := s.quizRepo.GetByID(ctx, g.QuizID)
		if err != nil {
			return domain.NewInternalError("Failed to get gate quiz", err)
		}
		if quiz == nil {
			return domain.NewInvalidInputError(fmt.Sprintf("gate quiz %s does not exist", g.QuizID))
		}
	}
	return nil
}

func (s *postService) loadPost(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get post", err)
	}
	if post == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("post %s not found", postID))
	}
	return post, nil
}

func (s *postService) CreatePost(ctx context.Context, actor domain.Actor, post *domain.Post) (*domain.Post, error) {
	if !actor.IsAdmin {
		return nil, domain.NewForbiddenError("only admins can create posts")
	}
	post.AuthorID = actor.UserID
	post.Likes = 0
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateGate(ctx, post.QuizGate()); err != nil {
		return nil, err
	}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.postRepo.Create(ctx, post); err != nil {
			return domain.NewInternalError("Failed to create post", err)
		}
		if post.Poll == nil {
			return nil
		}
		post.Poll.PostID = post.ID
		if err := s.postRepo.CreatePoll(ctx, post.Poll); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.NewConflictError("post already has a poll")
			}
			return domain.NewInternalError("Failed to create poll", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Post created",
		zap.String("postID", post.ID),
		zap.String("authorID", post.AuthorID),
		zap.String("gate", string(post.QuizGate().Type())),
		zap.Bool("poll", post.Poll != nil),
	)
	return post, nil
}

func (s *postService) GetPost(ctx context.Context, postID string, viewer *domain.Actor) (*domain.PostView, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	view := &domain.PostView{Post: *post}
	if viewer == nil {
		return view, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		decision, err := s.gates.MeetsPostQuizGate(gctx, viewer.UserID, post)
		if err != nil {
			return err
		}
		view.Gate = &decision
		return nil
	})
	g.Go(func() error {
		liked, err := s.likeRepo.IsLiked(gctx, domain.LikeTargetPost, viewer.UserID, post.ID)
		if err != nil {
			return domain.NewInternalError("Failed to load post like", err)
		}
		view.ViewerLiked = liked
		return nil
	})
	if post.Poll != nil {
		g.Go(func() error {
			vote, err := s.voteRepo.FindVote(gctx, viewer.UserID, post.ID)
			if err != nil {
				return domain.NewInternalError("Failed to load vote", err)
			}
			if vote != nil {
				view.ViewerOptionID = vote.OptionID
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *postService) ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultPostPageSize
	}
	if filter.Limit > MaxPostPageSize {
		filter.Limit = MaxPostPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	posts, total, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, domain.NewInternalError("Failed to list posts", err)
	}
	return posts, total, nil
}

func (s *postService) UpdatePost(ctx context.Context, actor domain.Actor, post *domain.Post) (*domain.Post, error) {
	existing, err := s.loadPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(existing.AuthorID) {
		return nil, domain.NewForbiddenError("only the author or an admin can edit this post")
	}

	existing.Title = post.Title
	existing.Content = post.Content
	existing.Category = post.Category
	existing.Tags = post.Tags
	poll := existing.Poll
	existing.Poll = nil
	if err := existing.Validate(); err != nil {
		return nil, err
	}
	// A nil gate leaves the stored one in place; NoGate clears it.
	if post.Gate != nil {
		if err := s.validateGate(ctx, post.Gate); err != nil {
			return nil, err
		}
		existing.Gate = post.Gate
	}

	if err := s.postRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("post %s not found", post.ID))
		}
		return nil, domain.NewInternalError("Failed to update post", err)
	}
	existing.Poll = poll
	return existing, nil
}

func (s *postService) DeletePost(ctx context.Context, actor domain.Actor, postID string) error {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	if !actor.CanModify(post.AuthorID) {
		return domain.NewForbiddenError("only the author or an admin can delete this post")
	}
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError(fmt.Sprintf("post %s not found", postID))
		}
		return domain.NewInternalError("Failed to delete post", err)
	}
	logger.Get().Info("Post deleted", zap.String("postID", post.ID), zap.String("actorID", actor.UserID))
	return nil
}

func (s *postService) CheckGate(ctx context.Context, userID, postID string) (domain.GateDecision, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return domain.GateDecision{}, err
	}
	return s.gates.MeetsPostQuizGate(ctx, userID, post)
}
