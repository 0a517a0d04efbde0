package service

import (
	"context"
	"time"

	"votist/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- fixedClock ---
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// --- passThroughTx runs fn directly ---
type passThroughTx struct {
	calls int
}

func (tx *passThroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- MockQuizRepository ---
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id string) (*domain.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) ListEnabled(ctx context.Context) ([]domain.Quiz, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) ListEnabledByDifficulties(ctx context.Context, tiers []domain.Difficulty) ([]domain.Quiz, error) {
	args := m.Called(ctx, tiers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) FindSuccessors(ctx context.Context, quizID string) ([]domain.Quiz, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) FindNextInTier(ctx context.Context, quiz *domain.Quiz) (*domain.Quiz, error) {
	args := m.Called(ctx, quiz)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) UpdateSequences(ctx context.Context, updates []domain.QuizSequenceUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockQuizRepository) Search(ctx context.Context, query string, limit int) ([]domain.Quiz, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Quiz), args.Error(1)
}

// --- MockProgressRepository ---
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Get(ctx context.Context, userID, quizID string) (*domain.UserProgress, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) GetForUpdate(ctx context.Context, userID, quizID string) (*domain.UserProgress, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) ListByUser(ctx context.Context, userID string) ([]domain.ProgressEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProgressEntry), args.Error(1)
}

func (m *MockProgressRepository) ListCompleted(ctx context.Context, userID string) ([]domain.ProgressEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProgressEntry), args.Error(1)
}

func (m *MockProgressRepository) InsertIfAbsent(ctx context.Context, rows []domain.UserProgress) (int, error) {
	args := m.Called(ctx, rows)
	return args.Int(0), args.Error(1)
}

func (m *MockProgressRepository) Save(ctx context.Context, progress *domain.UserProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func (m *MockProgressRepository) Unlock(ctx context.Context, userID, quizID string, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, quizID, now)
	return args.Bool(0), args.Error(1)
}

// --- MockPostRepository ---
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Post), args.Int(1), args.Error(2)
}

func (m *MockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) CreatePoll(ctx context.Context, poll *domain.Poll) error {
	args := m.Called(ctx, poll)
	return args.Error(0)
}

func (m *MockPostRepository) Update(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- MockVoteRepository ---
type MockVoteRepository struct {
	mock.Mock
}

func (m *MockVoteRepository) LockPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Poll), args.Error(1)
}

func (m *MockVoteRepository) GetPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Poll), args.Error(1)
}

func (m *MockVoteRepository) FindVote(ctx context.Context, userID, postID string) (*domain.Vote, error) {
	args := m.Called(ctx, userID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vote), args.Error(1)
}

func (m *MockVoteRepository) InsertVote(ctx context.Context, vote *domain.Vote) error {
	args := m.Called(ctx, vote)
	return args.Error(0)
}

func (m *MockVoteRepository) UpdateVoteOption(ctx context.Context, voteID, optionID string, now time.Time) error {
	args := m.Called(ctx, voteID, optionID, now)
	return args.Error(0)
}

func (m *MockVoteRepository) DeleteVote(ctx context.Context, voteID string) error {
	args := m.Called(ctx, voteID)
	return args.Error(0)
}

func (m *MockVoteRepository) AdjustOptionVotes(ctx context.Context, optionID string, delta int) error {
	args := m.Called(ctx, optionID, delta)
	return args.Error(0)
}

func (m *MockVoteRepository) AdjustTotalVotes(ctx context.Context, pollID string, delta int) error {
	args := m.Called(ctx, pollID, delta)
	return args.Error(0)
}

// --- MockLikeRepository ---
type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) Delete(ctx context.Context, target domain.LikeTarget, userID, targetID string) (bool, error) {
	args := m.Called(ctx, target, userID, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeRepository) Insert(ctx context.Context, target domain.LikeTarget, userID, targetID string, now time.Time) (bool, error) {
	args := m.Called(ctx, target, userID, targetID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeRepository) AdjustLikes(ctx context.Context, target domain.LikeTarget, targetID string, delta int) (int, error) {
	args := m.Called(ctx, target, targetID, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockLikeRepository) CurrentLikes(ctx context.Context, target domain.LikeTarget, targetID string) (int, error) {
	args := m.Called(ctx, target, targetID)
	return args.Int(0), args.Error(1)
}

func (m *MockLikeRepository) IsLiked(ctx context.Context, target domain.LikeTarget, userID, targetID string) (bool, error) {
	args := m.Called(ctx, target, userID, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeRepository) LikedCommentIDs(ctx context.Context, userID, postID string) (map[string]bool, error) {
	args := m.Called(ctx, userID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

// --- MockCommentRepository ---
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) UpdateContent(ctx context.Context, id, content string, now time.Time) error {
	args := m.Called(ctx, id, content, now)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) ListRoots(ctx context.Context, postID string) ([]domain.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListReplies(ctx context.Context, postID string) ([]domain.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

// --- MockMaintenanceRepository ---
type MockMaintenanceRepository struct {
	mock.Mock
}

func (m *MockMaintenanceRepository) ReconcileCounters(ctx context.Context) (domain.CounterDrift, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.CounterDrift), args.Error(1)
}

// --- MockGateService ---
type MockGateService struct {
	mock.Mock
}

func (m *MockGateService) MeetsQuizRequirement(ctx context.Context, userID string, required *domain.Difficulty) (bool, error) {
	args := m.Called(ctx, userID, required)
	return args.Bool(0), args.Error(1)
}

func (m *MockGateService) MeetsPostQuizGate(ctx context.Context, userID string, post *domain.Post) (domain.GateDecision, error) {
	args := m.Called(ctx, userID, post)
	return args.Get(0).(domain.GateDecision), args.Error(1)
}

func (m *MockGateService) HighestCompletedDifficulty(ctx context.Context, userID string) (*domain.Difficulty, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Difficulty), args.Error(1)
}

// --- MockProfileProvider ---
type MockProfileProvider struct {
	mock.Mock
}

func (m *MockProfileProvider) GetProfile(ctx context.Context, subject string) (*domain.Profile, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func strPtr(s string) *string { return &s }

func difficultyPtr(d domain.Difficulty) *domain.Difficulty { return &d }

func assertCode(err error, code domain.ErrorCode) bool {
	return domain.HasCode(err, code)
}
