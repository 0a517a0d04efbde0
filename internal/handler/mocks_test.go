package handler_test

import (
	"context"
	"encoding/json"

	"votist/internal/domain"
	"votist/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// --- Manual Mocks ---

type MockPostService struct {
	CreatePostFunc func(ctx context.Context, actor domain.Actor, post *domain.Post) (*domain.Post, error)
	GetPostFunc    func(ctx context.Context, postID string, viewer *domain.Actor) (*domain.PostView, error)
	ListPostsFunc  func(ctx context.Context, filter domain.PostFilter) ([]domain.Post, int, error)
	UpdatePostFunc func(ctx context.Context, actor domain.Actor, post *domain.Post) (*domain.Post, error)
	DeletePostFunc func(ctx context.Context, actor domain.Actor, postID string) error
	CheckGateFunc  func(ctx context.Context, userID, postID string) (domain.GateDecision, error)
}

func (m *MockPostService) CreatePost(ctx context.Context, actor domain.Actor, post *domain.Post) (*domain.Post, error) {
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(ctx, actor, post)
	}
	panic("MockPostService.CreatePostFunc not implemented")
}
func (m *MockPostService) GetPost(ctx context.Context, postID string, viewer *domain.Actor) (*domain.PostView, error) {
	if m.GetPostFunc != nil {
		return m.GetPostFunc(ctx, postID, viewer)
	}
	panic("MockPostService.GetPostFunc not implemented")
}
func (m *MockPostService) ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, int, error) {
	if m.ListPostsFunc != nil {
		return m.ListPostsFunc(ctx, filter)
	}
	panic("MockPostService.ListPostsFunc not implemented")
}
func (m *MockPostService) UpdatePost(ctx context.Context, actor domain.Actor, post *domain.Post) (*domain.Post, error) {
	if m.UpdatePostFunc != nil {
		return m.UpdatePostFunc(ctx, actor, post)
	}
	panic("MockPostService.UpdatePostFunc not implemented")
}
func (m *MockPostService) DeletePost(ctx context.Context, actor domain.Actor, postID string) error {
	if m.DeletePostFunc != nil {
		return m.DeletePostFunc(ctx, actor, postID)
	}
	panic("MockPostService.DeletePostFunc not implemented")
}
func (m *MockPostService) CheckGate(ctx context.Context, userID, postID string) (domain.GateDecision, error) {
	if m.CheckGateFunc != nil {
		return m.CheckGateFunc(ctx, userID, postID)
	}
	panic("MockPostService.CheckGateFunc not implemented")
}

type MockVoteService struct {
	VoteFunc       func(ctx context.Context, actor domain.Actor, postID, optionID string) (*domain.VoteOutcome, error)
	RemoveVoteFunc func(ctx context.Context, actor domain.Actor, postID string) (*domain.Poll, error)
}

func (m *MockVoteService) Vote(ctx context.Context, actor domain.Actor, postID, optionID string) (*domain.VoteOutcome, error) {
	if m.VoteFunc != nil {
		return m.VoteFunc(ctx, actor, postID, optionID)
	}
	panic("MockVoteService.VoteFunc not implemented")
}
func (m *MockVoteService) RemoveVote(ctx context.Context, actor domain.Actor, postID string) (*domain.Poll, error) {
	if m.RemoveVoteFunc != nil {
		return m.RemoveVoteFunc(ctx, actor, postID)
	}
	panic("MockVoteService.RemoveVoteFunc not implemented")
}

type MockLikeService struct {
	ToggleLikeFunc func(ctx context.Context, actor domain.Actor, target domain.LikeTarget, targetID string) (*domain.LikeState, error)
}

func (m *MockLikeService) ToggleLike(ctx context.Context, actor domain.Actor, target domain.LikeTarget, targetID string) (*domain.LikeState, error) {
	if m.ToggleLikeFunc != nil {
		return m.ToggleLikeFunc(ctx, actor, target, targetID)
	}
	panic("MockLikeService.ToggleLikeFunc not implemented")
}

type MockCommentService struct {
	CreateCommentFunc func(ctx context.Context, actor domain.Actor, postID, content string, parentID *string) (*domain.Comment, error)
	UpdateCommentFunc func(ctx context.Context, actor domain.Actor, commentID, content string) (*domain.Comment, error)
	DeleteCommentFunc func(ctx context.Context, actor domain.Actor, commentID string) error
	ListCommentsFunc  func(ctx context.Context, postID, viewerID string) ([]domain.CommentThread, error)
}

func (m *MockCommentService) CreateComment(ctx context.Context, actor domain.Actor, postID, content string, parentID *string) (*domain.Comment, error) {
	if m.CreateCommentFunc != nil {
		return m.CreateCommentFunc(ctx, actor, postID, content, parentID)
	}
	panic("MockCommentService.CreateCommentFunc not implemented")
}
func (m *MockCommentService) UpdateComment(ctx context.Context, actor domain.Actor, commentID, content string) (*domain.Comment, error) {
	if m.UpdateCommentFunc != nil {
		return m.UpdateCommentFunc(ctx, actor, commentID, content)
	}
	panic("MockCommentService.UpdateCommentFunc not implemented")
}
func (m *MockCommentService) DeleteComment(ctx context.Context, actor domain.Actor, commentID string) error {
	if m.DeleteCommentFunc != nil {
		return m.DeleteCommentFunc(ctx, actor, commentID)
	}
	panic("MockCommentService.DeleteCommentFunc not implemented")
}
func (m *MockCommentService) ListComments(ctx context.Context, postID, viewerID string) ([]domain.CommentThread, error) {
	if m.ListCommentsFunc != nil {
		return m.ListCommentsFunc(ctx, postID, viewerID)
	}
	panic("MockCommentService.ListCommentsFunc not implemented")
}

type MockQuizService struct {
	ListQuizzesFunc    func(ctx context.Context) ([]domain.Quiz, error)
	CreateQuizFunc     func(ctx context.Context, actor domain.Actor, quiz *domain.Quiz) (*domain.Quiz, error)
	UpdateSequenceFunc func(ctx context.Context, actor domain.Actor, updates []domain.QuizSequenceUpdate) error
	SearchQuizzesFunc  func(ctx context.Context, actor domain.Actor, query string) ([]domain.Quiz, error)
}

func (m *MockQuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	if m.ListQuizzesFunc != nil {
		return m.ListQuizzesFunc(ctx)
	}
	panic("MockQuizService.ListQuizzesFunc not implemented")
}
func (m *MockQuizService) CreateQuiz(ctx context.Context, actor domain.Actor, quiz *domain.Quiz) (*domain.Quiz, error) {
	if m.CreateQuizFunc != nil {
		return m.CreateQuizFunc(ctx, actor, quiz)
	}
	panic("MockQuizService.CreateQuizFunc not implemented")
}
func (m *MockQuizService) UpdateSequence(ctx context.Context, actor domain.Actor, updates []domain.QuizSequenceUpdate) error {
	if m.UpdateSequenceFunc != nil {
		return m.UpdateSequenceFunc(ctx, actor, updates)
	}
	panic("MockQuizService.UpdateSequenceFunc not implemented")
}
func (m *MockQuizService) SearchQuizzes(ctx context.Context, actor domain.Actor, query string) ([]domain.Quiz, error) {
	if m.SearchQuizzesFunc != nil {
		return m.SearchQuizzesFunc(ctx, actor, query)
	}
	panic("MockQuizService.SearchQuizzesFunc not implemented")
}

type MockProgressService struct {
	InitializeProgressFunc func(ctx context.Context, userID string) (int, error)
	StartQuizFunc          func(ctx context.Context, userID, quizID string) (*domain.UserProgress, error)
	SubmitQuizFunc         func(ctx context.Context, userID, quizID string, score int, answers json.RawMessage) (*domain.QuizResult, error)
	ListProgressFunc       func(ctx context.Context, userID string) ([]domain.ProgressEntry, error)
	GetResultFunc          func(ctx context.Context, userID, quizID string) (*domain.QuizResult, error)
}

func (m *MockProgressService) InitializeProgress(ctx context.Context, userID string) (int, error) {
	if m.InitializeProgressFunc != nil {
		return m.InitializeProgressFunc(ctx, userID)
	}
	panic("MockProgressService.InitializeProgressFunc not implemented")
}
func (m *MockProgressService) StartQuiz(ctx context.Context, userID, quizID string) (*domain.UserProgress, error) {
	if m.StartQuizFunc != nil {
		return m.StartQuizFunc(ctx, userID, quizID)
	}
	panic("MockProgressService.StartQuizFunc not implemented")
}
func (m *MockProgressService) SubmitQuiz(ctx context.Context, userID, quizID string, score int, answers json.RawMessage) (*domain.QuizResult, error) {
	if m.SubmitQuizFunc != nil {
		return m.SubmitQuizFunc(ctx, userID, quizID, score, answers)
	}
	panic("MockProgressService.SubmitQuizFunc not implemented")
}
func (m *MockProgressService) ListProgress(ctx context.Context, userID string) ([]domain.ProgressEntry, error) {
	if m.ListProgressFunc != nil {
		return m.ListProgressFunc(ctx, userID)
	}
	panic("MockProgressService.ListProgressFunc not implemented")
}
func (m *MockProgressService) GetResult(ctx context.Context, userID, quizID string) (*domain.QuizResult, error) {
	if m.GetResultFunc != nil {
		return m.GetResultFunc(ctx, userID, quizID)
	}
	panic("MockProgressService.GetResultFunc not implemented")
}

type MockUserService struct {
	InitUserFunc func(ctx context.Context, identity domain.Identity) (*domain.User, int, error)
	GetUserFunc  func(ctx context.Context, userID string) (*domain.User, error)
}

func (m *MockUserService) InitUser(ctx context.Context, identity domain.Identity) (*domain.User, int, error) {
	if m.InitUserFunc != nil {
		return m.InitUserFunc(ctx, identity)
	}
	panic("MockUserService.InitUserFunc not implemented")
}
func (m *MockUserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, userID)
	}
	panic("MockUserService.GetUserFunc not implemented")
}

const (
	testPostID    = "01HZX3J8Q5V2K7M9N4P6R8T0W2"
	testOptionID  = "01HZX3J8Q5V2K7M9N4P6R8T0W3"
	testCommentID = "01HZX3J8Q5V2K7M9N4P6R8T0W4"
	testQuizID    = "01HZX3J8Q5V2K7M9N4P6R8T0W5"
)

var (
	memberUser = &domain.User{ID: "u1", ExternalID: "user_ext_1"}
	adminUser  = &domain.User{ID: "admin1", ExternalID: "user_ext_admin", IsAdmin: true}
)

// asUser stands in for the auth middleware.
func asUser(user *domain.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals(middleware.UserKey, user)
			c.Locals(middleware.IdentityKey, &domain.Identity{Subject: user.ExternalID})
		}
		return c.Next()
	}
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
}
