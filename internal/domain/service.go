package domain

import (
	"context"
	"time"
)

// TransactionManager runs fn inside one store transaction. Repositories
// called with the ctx passed to fn join that transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repositories return (nil, nil) when a single record is not found.

// UserRepository is the local user directory.
type UserRepository interface {
	FindByExternalID(ctx context.Context, externalID string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// Upsert inserts or refreshes by external id and returns the stored row.
	Upsert(ctx context.Context, user *User) (*User, error)
}

type QuizRepository interface {
	GetByID(ctx context.Context, id string) (*Quiz, error)
	ListEnabled(ctx context.Context) ([]Quiz, error)
	ListEnabledByDifficulties(ctx context.Context, tiers []Difficulty) ([]Quiz, error)
	// FindSuccessors returns enabled quizzes whose prerequisite is quizID.
	FindSuccessors(ctx context.Context, quizID string) ([]Quiz, error)
	// FindNextInTier returns the next enabled quiz by sequence in the same
	// tier that has no prerequisite of its own.
	FindNextInTier(ctx context.Context, quiz *Quiz) (*Quiz, error)
	Create(ctx context.Context, quiz *Quiz) error
	UpdateSequences(ctx context.Context, updates []QuizSequenceUpdate) error
	Search(ctx context.Context, query string, limit int) ([]Quiz, error)
}

type ProgressRepository interface {
	Get(ctx context.Context, userID, quizID string) (*UserProgress, error)
	// GetForUpdate locks the row for the surrounding transaction.
	GetForUpdate(ctx context.Context, userID, quizID string) (*UserProgress, error)
	ListByUser(ctx context.Context, userID string) ([]ProgressEntry, error)
	ListCompleted(ctx context.Context, userID string) ([]ProgressEntry, error)
	// InsertIfAbsent skips rows that already exist and reports how many were inserted.
	InsertIfAbsent(ctx context.Context, rows []UserProgress) (int, error)
	Save(ctx context.Context, progress *UserProgress) error
	// Unlock makes quizID AVAILABLE for userID if it is LOCKED or untracked.
	Unlock(ctx context.Context, userID, quizID string, now time.Time) (bool, error)
}

type PostRepository interface {
	GetByID(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context, filter PostFilter) ([]Post, int, error)
	Create(ctx context.Context, post *Post) error
	CreatePoll(ctx context.Context, poll *Poll) error
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id string) error
}

// VoteRepository owns votes and the poll counters they feed.
type VoteRepository interface {
	// LockPoll locks the poll row for the surrounding transaction.
	LockPoll(ctx context.Context, pollID string) (*Poll, error)
	GetPoll(ctx context.Context, pollID string) (*Poll, error)
	FindVote(ctx context.Context, userID, postID string) (*Vote, error)
	InsertVote(ctx context.Context, vote *Vote) error
	UpdateVoteOption(ctx context.Context, voteID, optionID string, now time.Time) error
	DeleteVote(ctx context.Context, voteID string) error
	AdjustOptionVotes(ctx context.Context, optionID string, delta int) error
	AdjustTotalVotes(ctx context.Context, pollID string, delta int) error
}

type LikeRepository interface {
	// Delete removes the like and reports whether one existed.
	Delete(ctx context.Context, target LikeTarget, userID, targetID string) (bool, error)
	// Insert adds the like and reports whether a row was created.
	Insert(ctx context.Context, target LikeTarget, userID, targetID string, now time.Time) (bool, error)
	// AdjustLikes applies delta to the target's counter and returns the new value.
	AdjustLikes(ctx context.Context, target LikeTarget, targetID string, delta int) (int, error)
	CurrentLikes(ctx context.Context, target LikeTarget, targetID string) (int, error)
	IsLiked(ctx context.Context, target LikeTarget, userID, targetID string) (bool, error)
	LikedCommentIDs(ctx context.Context, userID, postID string) (map[string]bool, error)
}

type CommentRepository interface {
	GetByID(ctx context.Context, id string) (*Comment, error)
	Create(ctx context.Context, comment *Comment) error
	UpdateContent(ctx context.Context, id, content string, now time.Time) error
	Delete(ctx context.Context, id string) error
	ListRoots(ctx context.Context, postID string) ([]Comment, error)
	ListReplies(ctx context.Context, postID string) ([]Comment, error)
}

// CounterDrift counts rows whose denormalized counter was corrected.
type CounterDrift struct {
	PollOptions  int64
	Polls        int64
	PostLikes    int64
	CommentLikes int64
}

func (d CounterDrift) Total() int64 {
	return d.PollOptions + d.Polls + d.PostLikes + d.CommentLikes
}

type MaintenanceRepository interface {
	ReconcileCounters(ctx context.Context) (CounterDrift, error)
}

// ProfileProvider reads the identity provider's record for a subject.
// It returns (nil, nil) when the provider does not know the subject.
type ProfileProvider interface {
	GetProfile(ctx context.Context, subject string) (*Profile, error)
}
