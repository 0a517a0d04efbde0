package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"votist/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var progressNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newProgressFixture() (*MockQuizRepository, *MockProgressRepository, *passThroughTx, ProgressService) {
	quizRepo := new(MockQuizRepository)
	progressRepo := new(MockProgressRepository)
	tx := &passThroughTx{}
	svc := NewProgressService(quizRepo, progressRepo, tx, fixedClock{now: progressNow})
	return quizRepo, progressRepo, tx, svc
}

func TestProgressService_InitializeProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("SeedsChainStatuses", func(t *testing.T) {
		quizRepo, progressRepo, _, svc := newProgressFixture()
		quizRepo.On("ListEnabled", ctx).Return([]domain.Quiz{
			{ID: "q1", Difficulty: domain.DifficultyVotist, Enabled: true},
			{ID: "q2", Difficulty: domain.DifficultyVotist, Enabled: true, PrerequisiteID: strPtr("q1")},
			{ID: "q3", Difficulty: domain.DifficultyScholar, Enabled: true, PrerequisiteID: strPtr("retired")},
		}, nil)
		progressRepo.On("ListByUser", ctx, "u1").Return([]domain.ProgressEntry{}, nil)
		progressRepo.On("InsertIfAbsent", ctx, mock.MatchedBy(func(rows []domain.UserProgress) bool {
			if len(rows) != 3 {
				return false
			}
			return rows[0].Status == domain.StatusAvailable &&
				rows[1].Status == domain.StatusLocked &&
				rows[2].Status == domain.StatusAvailable &&
				rows[0].CreatedAt.Equal(progressNow)
		})).Return(3, nil)

		n, err := svc.InitializeProgress(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		progressRepo.AssertExpectations(t)
	})

	t.Run("UnlockedWhenPrerequisiteCompleted", func(t *testing.T) {
		quizRepo, progressRepo, _, svc := newProgressFixture()
		quizRepo.On("ListEnabled", ctx).Return([]domain.Quiz{
			{ID: "q1", Enabled: true},
			{ID: "q2", Enabled: true, PrerequisiteID: strPtr("q1")},
		}, nil)
		progressRepo.On("ListByUser", ctx, "u1").Return([]domain.ProgressEntry{
			{Progress: domain.UserProgress{QuizID: "q1", Status: domain.StatusCompleted}},
		}, nil)
		progressRepo.On("InsertIfAbsent", ctx, mock.MatchedBy(func(rows []domain.UserProgress) bool {
			return len(rows) == 1 && rows[0].QuizID == "q2" && rows[0].Status == domain.StatusAvailable
		})).Return(1, nil)

		n, err := svc.InitializeProgress(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("Idempotent", func(t *testing.T) {
		quizRepo, progressRepo, _, svc := newProgressFixture()
		quizRepo.On("ListEnabled", ctx).Return([]domain.Quiz{{ID: "q1", Enabled: true}}, nil)
		progressRepo.On("ListByUser", ctx, "u1").Return([]domain.ProgressEntry{
			{Progress: domain.UserProgress{QuizID: "q1", Status: domain.StatusInProgress}},
		}, nil)

		n, err := svc.InitializeProgress(ctx, "u1")
		require.NoError(t, err)
		assert.Zero(t, n)
		progressRepo.AssertNotCalled(t, "InsertIfAbsent", mock.Anything, mock.Anything)
	})
}

func TestProgressService_StartQuiz(t *testing.T) {
	ctx := context.Background()

	t.Run("LockedIsForbidden", func(t *testing.T) {
		quizRepo, progressRepo, _, svc := newProgressFixture()
		quizRepo.On("GetByID", ctx, "q2").Return(&domain.Quiz{ID: "q2", Enabled: true, PrerequisiteID: strPtr("q1")}, nil)
		progressRepo.On("GetForUpdate", ctx, "u1", "q2").Return(&domain.UserProgress{UserID: "u1", QuizID: "q2", Status: domain.StatusLocked}, nil)

		_, err := svc.StartQuiz(ctx, "u1", "q2")
		assert.True(t, assertCode(err, domain.CodeForbidden))
		progressRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("UntrackedQuizStarts", func(t *testing.T) {
		quizRepo, progressRepo, tx, svc := newProgressFixture()
		quizRepo.On("GetByID", ctx, "q1").Return(&domain.Quiz{ID: "q1", Enabled: true}, nil)
		progressRepo.On("GetForUpdate", ctx, "u1", "q1").Return(nil, nil)
		progressRepo.On("Save", ctx, mock.MatchedBy(func(p *domain.UserProgress) bool {
			return p.Status == domain.StatusInProgress && p.StartedAt != nil
		})).Return(nil)

		p, err := svc.StartQuiz(ctx, "u1", "q1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, p.Status)
		assert.Equal(t, 1, tx.calls)
	})

	t.Run("DisabledQuizNotFound", func(t *testing.T) {
		quizRepo, _, _, svc := newProgressFixture()
		quizRepo.On("GetByID", ctx, "q1").Return(&domain.Quiz{ID: "q1", Enabled: false}, nil)

		_, err := svc.StartQuiz(ctx, "u1", "q1")
		assert.True(t, assertCode(err, domain.CodeNotFound))
	})
}

func TestProgressService_SubmitQuiz_ChainScenario(t *testing.T) {
	ctx := context.Background()
	quizRepo, progressRepo, _, svc := newProgressFixture()
	q1 := &domain.Quiz{ID: "q1", Difficulty: domain.DifficultyVotist, PassingScore: 70, Enabled: true}
	q2 := domain.Quiz{ID: "q2", Difficulty: domain.DifficultyVotist, PassingScore: 70, Enabled: true, PrerequisiteID: strPtr("q1")}
	quizRepo.On("GetByID", ctx, "q1").Return(q1, nil)

	row := &domain.UserProgress{UserID: "u1", QuizID: "q1", Status: domain.StatusInProgress}
	progressRepo.On("GetForUpdate", ctx, "u1", "q1").Return(row, nil)
	progressRepo.On("Save", ctx, row).Return(nil)
	quizRepo.On("FindSuccessors", ctx, "q1").Return([]domain.Quiz{q2}, nil).Once()
	progressRepo.On("Unlock", ctx, "u1", "q2", progressNow).Return(true, nil).Once()

	result, err := svc.SubmitQuiz(ctx, "u1", "q1", 80, json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, domain.StatusCompleted, result.Progress.Status)
	assert.Equal(t, []string{"q2"}, result.UnlockedQuizID)
	require.NotNil(t, result.Progress.CompletedAt)

	// Retake below the passing score: back to AVAILABLE, nothing re-locked.
	result, err = svc.SubmitQuiz(ctx, "u1", "q1", 50, nil)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, domain.StatusAvailable, result.Progress.Status)
	assert.False(t, result.Progress.IsCompleted)
	assert.Nil(t, result.Progress.CompletedAt)
	assert.Empty(t, result.UnlockedQuizID)
	quizRepo.AssertNumberOfCalls(t, "FindSuccessors", 1)
	progressRepo.AssertNumberOfCalls(t, "Unlock", 1)
}

func TestProgressService_SubmitQuiz_NextInTierFallback(t *testing.T) {
	ctx := context.Background()
	quizRepo, progressRepo, _, svc := newProgressFixture()
	q1 := &domain.Quiz{ID: "q1", PassingScore: 50, Enabled: true}
	quizRepo.On("GetByID", ctx, "q1").Return(q1, nil)
	progressRepo.On("GetForUpdate", ctx, "u1", "q1").Return(&domain.UserProgress{UserID: "u1", QuizID: "q1", Status: domain.StatusAvailable}, nil)
	progressRepo.On("Save", ctx, mock.Anything).Return(nil)
	quizRepo.On("FindSuccessors", ctx, "q1").Return([]domain.Quiz{}, nil)
	quizRepo.On("FindNextInTier", ctx, q1).Return(&domain.Quiz{ID: "q5"}, nil)
	progressRepo.On("Unlock", ctx, "u1", "q5", progressNow).Return(false, nil)

	result, err := svc.SubmitQuiz(ctx, "u1", "q1", 50, nil)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Empty(t, result.UnlockedQuizID)
	progressRepo.AssertCalled(t, "Unlock", ctx, "u1", "q5", progressNow)
}

func TestProgressService_SubmitQuiz_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("ScoreOutOfRange", func(t *testing.T) {
		_, _, _, svc := newProgressFixture()
		_, err := svc.SubmitQuiz(ctx, "u1", "q1", 101, nil)
		assert.True(t, assertCode(err, domain.CodeInvalidInput))
	})

	t.Run("MalformedAnswers", func(t *testing.T) {
		_, _, _, svc := newProgressFixture()
		_, err := svc.SubmitQuiz(ctx, "u1", "q1", 10, json.RawMessage(`{oops`))
		assert.True(t, assertCode(err, domain.CodeInvalidInput))
	})

	t.Run("Locked", func(t *testing.T) {
		quizRepo, progressRepo, _, svc := newProgressFixture()
		quizRepo.On("GetByID", ctx, "q2").Return(&domain.Quiz{ID: "q2", Enabled: true}, nil)
		progressRepo.On("GetForUpdate", ctx, "u1", "q2").Return(&domain.UserProgress{Status: domain.StatusLocked}, nil)

		_, err := svc.SubmitQuiz(ctx, "u1", "q2", 90, nil)
		assert.True(t, assertCode(err, domain.CodeForbidden))
	})

	t.Run("SaveFails", func(t *testing.T) {
		quizRepo, progressRepo, _, svc := newProgressFixture()
		quizRepo.On("GetByID", ctx, "q1").Return(&domain.Quiz{ID: "q1", Enabled: true, PassingScore: 70}, nil)
		progressRepo.On("GetForUpdate", ctx, "u1", "q1").Return(&domain.UserProgress{Status: domain.StatusInProgress}, nil)
		progressRepo.On("Save", ctx, mock.Anything).Return(errors.New("connection reset"))

		_, err := svc.SubmitQuiz(ctx, "u1", "q1", 10, nil)
		assert.True(t, assertCode(err, domain.CodeInternal))
	})
}

func TestProgressService_GetResult(t *testing.T) {
	ctx := context.Background()
	quizRepo, progressRepo, _, svc := newProgressFixture()
	quizRepo.On("GetByID", ctx, "q1").Return(&domain.Quiz{ID: "q1", PassingScore: 70}, nil)
	progressRepo.On("Get", ctx, "u1", "q1").Return(&domain.UserProgress{Status: domain.StatusCompleted, IsCompleted: true, Score: 88}, nil)
	progressRepo.On("Get", ctx, "u2", "q1").Return(&domain.UserProgress{Status: domain.StatusLocked}, nil)

	result, err := svc.GetResult(ctx, "u1", "q1")
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, 70, result.PassingScore)

	_, err = svc.GetResult(ctx, "u2", "q1")
	assert.True(t, assertCode(err, domain.CodeNotFound))
}
