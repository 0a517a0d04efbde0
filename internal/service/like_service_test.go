package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"votist/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLikeService_ToggleLike(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	actor := domain.Actor{UserID: "u1"}
	post := &domain.Post{ID: "p1"}

	newService := func() (*MockPostRepository, *MockCommentRepository, *MockLikeRepository, *MockGateService, LikeService) {
		posts := new(MockPostRepository)
		comments := new(MockCommentRepository)
		likes := new(MockLikeRepository)
		gates := new(MockGateService)
		svc := NewLikeService(posts, comments, likes, gates, &passThroughTx{}, fixedClock{now: now})
		return posts, comments, likes, gates, svc
	}

	t.Run("LikePost", func(t *testing.T) {
		posts, _, likes, gates, svc := newService()
		posts.On("GetByID", ctx, "p1").Return(post, nil)
		gates.On("MeetsPostQuizGate", ctx, "u1", post).Return(domain.Allow(), nil)
		likes.On("Delete", ctx, domain.LikeTargetPost, "u1", "p1").Return(false, nil)
		likes.On("Insert", ctx, domain.LikeTargetPost, "u1", "p1", now).Return(true, nil)
		likes.On("AdjustLikes", ctx, domain.LikeTargetPost, "p1", 1).Return(4, nil)

		state, err := svc.ToggleLike(ctx, actor, domain.LikeTargetPost, "p1")
		require.NoError(t, err)
		assert.Equal(t, domain.LikeState{Likes: 4, IsLiked: true}, *state)
	})

	t.Run("UnlikeComment", func(t *testing.T) {
		posts, comments, likes, gates, svc := newService()
		comments.On("GetByID", ctx, "c1").Return(&domain.Comment{ID: "c1", PostID: "p1"}, nil)
		posts.On("GetByID", ctx, "p1").Return(post, nil)
		gates.On("MeetsPostQuizGate", ctx, "u1", post).Return(domain.Allow(), nil)
		likes.On("Delete", ctx, domain.LikeTargetComment, "u1", "c1").Return(true, nil)
		likes.On("AdjustLikes", ctx, domain.LikeTargetComment, "c1", -1).Return(0, nil)

		state, err := svc.ToggleLike(ctx, actor, domain.LikeTargetComment, "c1")
		require.NoError(t, err)
		assert.Equal(t, domain.LikeState{Likes: 0, IsLiked: false}, *state)
		likes.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LostInsertRaceReportsStoredCount", func(t *testing.T) {
		posts, _, likes, gates, svc := newService()
		posts.On("GetByID", ctx, "p1").Return(post, nil)
		gates.On("MeetsPostQuizGate", ctx, "u1", post).Return(domain.Allow(), nil)
		likes.On("Delete", ctx, domain.LikeTargetPost, "u1", "p1").Return(false, nil)
		likes.On("Insert", ctx, domain.LikeTargetPost, "u1", "p1", now).Return(false, nil)
		likes.On("CurrentLikes", ctx, domain.LikeTargetPost, "p1").Return(7, nil)

		state, err := svc.ToggleLike(ctx, actor, domain.LikeTargetPost, "p1")
		require.NoError(t, err)
		assert.True(t, state.IsLiked)
		assert.Equal(t, 7, state.Likes)
		likes.AssertNotCalled(t, "AdjustLikes", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("GateDenied", func(t *testing.T) {
		posts, _, likes, gates, svc := newService()
		posts.On("GetByID", ctx, "p1").Return(post, nil)
		gates.On("MeetsPostQuizGate", ctx, "u1", post).Return(domain.Deny("Complete all SCHOLAR level quizzes to participate (1 remaining)"), nil)

		_, err := svc.ToggleLike(ctx, actor, domain.LikeTargetPost, "p1")
		assert.True(t, assertCode(err, domain.CodeForbidden))
		likes.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("TargetVanished", func(t *testing.T) {
		posts, _, likes, gates, svc := newService()
		posts.On("GetByID", ctx, "p1").Return(post, nil)
		gates.On("MeetsPostQuizGate", ctx, "u1", post).Return(domain.Allow(), nil)
		likes.On("Delete", ctx, domain.LikeTargetPost, "u1", "p1").Return(false, nil)
		likes.On("Insert", ctx, domain.LikeTargetPost, "u1", "p1", now).Return(true, nil)
		likes.On("AdjustLikes", ctx, domain.LikeTargetPost, "p1", 1).Return(0, fmt.Errorf("posts p1: %w", sql.ErrNoRows))

		_, err := svc.ToggleLike(ctx, actor, domain.LikeTargetPost, "p1")
		assert.True(t, assertCode(err, domain.CodeNotFound))
	})

	t.Run("UnknownTarget", func(t *testing.T) {
		_, _, _, _, svc := newService()
		_, err := svc.ToggleLike(ctx, actor, domain.LikeTarget("poll"), "x")
		assert.True(t, assertCode(err, domain.CodeInvalidInput))
	})

	t.Run("MissingComment", func(t *testing.T) {
		_, comments, _, _, svc := newService()
		comments.On("GetByID", ctx, "c404").Return(nil, nil)

		_, err := svc.ToggleLike(ctx, actor, domain.LikeTargetComment, "c404")
		assert.True(t, assertCode(err, domain.CodeNotFound))
	})
}
