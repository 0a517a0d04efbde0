package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"votist/internal/domain"
	"votist/internal/logger"

	"go.uber.org/zap"
)

// CommentService manages two-level comment threads on posts.
type CommentService interface {
	CreateComment(ctx context.Context, actor domain.Actor, postID, content string, parentID *string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, actor domain.Actor, commentID, content string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, actor domain.Actor, commentID string) error
	// ListComments returns roots newest first, each with its replies oldest
	// first. viewerID may be empty for anonymous readers.
	ListComments(ctx context.Context, postID, viewerID string) ([]domain.CommentThread, error)
}

type commentService struct {
	postRepo    domain.PostRepository
	commentRepo domain.CommentRepository
	likeRepo    domain.LikeRepository
	gates       GateService
	clock       Clock
}

func NewCommentService(
	postRepo domain.PostRepository,
	commentRepo domain.CommentRepository,
	likeRepo domain.LikeRepository,
	gates GateService,
	clock Clock,
) CommentService {
	if clock == nil {
		clock = SystemClock()
	}
	return &commentService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		gates:       gates,
		clock:       clock,
	}
}

func (s *commentService) loadPost(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get post", err)
	}
	if post == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("post %s not found", postID))
	}
	return post, nil
}

func (s *commentService) loadComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get comment", err)
	}
	if comment == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("comment %s not found", commentID))
	}
	return comment, nil
}

func (s *commentService) CreateComment(ctx context.Context, actor domain.Actor, postID, content string, parentID *string) (*domain.Comment, error) {
	content, err := domain.NormalizeCommentContent(content)
	if err != nil {
		return nil, err
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		PostID:   post.ID,
		AuthorID: actor.UserID,
		Content:  content,
		Likes:    0,
	}
	if parentID != nil && *parentID != "" {
		parent, err := s.commentRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, domain.NewInternalError("Failed to get parent comment", err)
		}
		if parent == nil {
			return nil, domain.NewNotFoundError("parent comment not found")
		}
		if parent.PostID != post.ID {
			return nil, domain.NewInvalidInputError("parent comment belongs to a different post")
		}
		pid := parent.ID
		root := parent.ThreadRoot()
		comment.ParentID = &pid
		comment.RootCommentID = &root
	}

	decision, err := s.gates.MeetsPostQuizGate(ctx, actor.UserID, post)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, domain.NewForbiddenError(decision.Message)
	}

	now := s.clock.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, domain.NewInternalError("Failed to create comment", err)
	}

	logger.Get().Debug("Comment created",
		zap.String("commentID", comment.ID),
		zap.String("postID", post.ID),
		zap.Bool("reply", comment.ParentID != nil),
	)
	return comment, nil
}

func (s *commentService) UpdateComment(ctx context.Context, actor domain.Actor, commentID, content string) (*domain.Comment, error) {
	content, err := domain.NormalizeCommentContent(content)
	if err != nil {
		return nil, err
	}
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(comment.AuthorID) {
		return nil, domain.NewForbiddenError("only the author or an admin can edit this comment")
	}

	now := s.clock.Now()
	if !actor.IsAdmin && now.Sub(comment.CreatedAt) > domain.CommentEditWindow {
		return nil, domain.NewForbiddenError("edit window expired")
	}

	if err := s.commentRepo.UpdateContent(ctx, comment.ID, content, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("comment %s not found", commentID))
		}
		return nil, domain.NewInternalError("Failed to update comment", err)
	}
	comment.Content = content
	comment.UpdatedAt = now
	return comment, nil
}

func (s *commentService) DeleteComment(ctx context.Context, actor domain.Actor, commentID string) error {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !actor.CanModify(comment.AuthorID) {
		return domain.NewForbiddenError("only the author or an admin can delete this comment")
	}
	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError(fmt.Sprintf("comment %s not found", commentID))
		}
		return domain.NewInternalError("Failed to delete comment", err)
	}
	logger.Get().Info("Comment deleted",
		zap.String("commentID", comment.ID),
		zap.String("actorID", actor.UserID),
		zap.Bool("admin", actor.IsAdmin),
	)
	return nil
}

func (s *commentService) ListComments(ctx context.Context, postID, viewerID string) ([]domain.CommentThread, error) {
	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}
	roots, err := s.commentRepo.ListRoots(ctx, postID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list comments", err)
	}
	replies, err := s.commentRepo.ListReplies(ctx, postID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list replies", err)
	}

	liked := map[string]bool{}
	if viewerID != "" {
		liked, err = s.likeRepo.LikedCommentIDs(ctx, viewerID, postID)
		if err != nil {
			return nil, domain.NewInternalError("Failed to load comment likes", err)
		}
	}

	threads := make([]domain.CommentThread, 0, len(roots))
	index := make(map[string]int, len(roots))
	for _, root := range roots {
		root.IsLiked = liked[root.ID]
		index[root.ID] = len(threads)
		threads = append(threads, domain.CommentThread{Comment: root, Replies: []domain.Comment{}})
	}
	for _, reply := range replies {
		if reply.RootCommentID == nil {
			continue
		}
		i, ok := index[*reply.RootCommentID]
		if !ok {
			continue
		}
		reply.IsLiked = liked[reply.ID]
		threads[i].Replies = append(threads[i].Replies, reply)
	}
	return threads, nil
}
