package domain

import (
	"strings"
	"time"
)

// Post is an admin-authored article that may own one poll and carry a gate.
type Post struct {
	ID        string
	AuthorID  string
	Title     string
	Content   string
	Category  string
	Tags      []string
	Likes     int
	Gate      QuizGate
	Poll      *Poll
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuizGate returns the post's gate, NoGate when unset.
func (p *Post) QuizGate() QuizGate {
	if p.Gate == nil {
		return NoGate{}
	}
	return p.Gate
}

func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return NewInvalidInputError("post title is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		return NewInvalidInputError("post content is required")
	}
	if p.Poll != nil {
		return p.Poll.Validate()
	}
	return nil
}

// Poll belongs to exactly one post. TotalVotes counts distinct voters.
type Poll struct {
	ID                 string
	PostID             string
	Question           string
	EndsAt             *time.Time
	TotalVotes         int
	RequiredDifficulty *Difficulty
	Options            []PollOption
}

// HasEnded reports whether the poll deadline is strictly before now.
func (p *Poll) HasEnded(now time.Time) bool {
	return p.EndsAt != nil && now.After(*p.EndsAt)
}

// Option returns the option with the given id, or nil.
func (p *Poll) Option(optionID string) *PollOption {
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			return &p.Options[i]
		}
	}
	return nil
}

func (p *Poll) Validate() error {
	if strings.TrimSpace(p.Question) == "" {
		return NewInvalidInputError("poll question is required")
	}
	if len(p.Options) < 2 {
		return NewInvalidInputError("poll needs at least two options")
	}
	for _, o := range p.Options {
		if strings.TrimSpace(o.Text) == "" {
			return NewInvalidInputError("poll option text is required")
		}
	}
	if p.RequiredDifficulty != nil && !p.RequiredDifficulty.Valid() {
		return NewInvalidInputError("poll required difficulty is invalid")
	}
	return nil
}

type PollOption struct {
	ID       string
	PollID   string
	Text     string
	Position int
	Votes    int
}

// Vote is unique per (user, post).
type Vote struct {
	ID        string
	UserID    string
	PostID    string
	OptionID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VoteOutcome is the poll state after a vote. Changed is false when the
// user re-voted for the option they already held.
type VoteOutcome struct {
	Poll             Poll
	SelectedOptionID string
	Changed          bool
}

// LikeTarget identifies what a like points at.
type LikeTarget string

const (
	LikeTargetPost    LikeTarget = "post"
	LikeTargetComment LikeTarget = "comment"
)

func (t LikeTarget) Valid() bool {
	return t == LikeTargetPost || t == LikeTargetComment
}

// LikeState is the result of a toggle.
type LikeState struct {
	Likes   int
	IsLiked bool
}

// PostView is a post as seen by one viewer.
type PostView struct {
	Post           Post
	ViewerOptionID string
	ViewerLiked    bool
	Gate           *GateDecision
}

// PostFilter narrows post listings.
type PostFilter struct {
	Category string
	Limit    int
	Offset   int
}
