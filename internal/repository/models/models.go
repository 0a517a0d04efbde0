package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// User represents a row of users.
type User struct {
	ID         string         `db:"id"`
	ExternalID string         `db:"external_id"`
	Email      string         `db:"email"`
	FirstName  sql.NullString `db:"first_name"`
	LastName   sql.NullString `db:"last_name"`
	AvatarURL  sql.NullString `db:"avatar_url"`
	IsAdmin    bool           `db:"is_admin"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// Quiz represents a row of quizzes. Difficulty holds the tier rank.
type Quiz struct {
	ID             string         `db:"id"`
	Title          string         `db:"title"`
	Description    sql.NullString `db:"description"`
	Difficulty     int16          `db:"difficulty"`
	PassingScore   int            `db:"passing_score"`
	Enabled        bool           `db:"enabled"`
	Sequence       int            `db:"sequence"`
	PrerequisiteID sql.NullString `db:"prerequisite_id"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// UserProgress represents a row of user_progress.
type UserProgress struct {
	UserID      string       `db:"user_id"`
	QuizID      string       `db:"quiz_id"`
	Status      string       `db:"status"`
	Score       int          `db:"score"`
	IsCompleted bool         `db:"is_completed"`
	CompletedAt sql.NullTime `db:"completed_at"`
	StartedAt   sql.NullTime `db:"started_at"`
	Answers     JSONDocument `db:"answers"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

// ProgressWithQuiz is a user_progress row joined with its quiz, columns
// prefixed "q_" for the quiz side.
type ProgressWithQuiz struct {
	UserProgress
	QuizTitle          string         `db:"q_title"`
	QuizDescription    sql.NullString `db:"q_description"`
	QuizDifficulty     int16          `db:"q_difficulty"`
	QuizPassingScore   int            `db:"q_passing_score"`
	QuizEnabled        bool           `db:"q_enabled"`
	QuizSequence       int            `db:"q_sequence"`
	QuizPrerequisiteID sql.NullString `db:"q_prerequisite_id"`
}

// Post represents a row of posts.
type Post struct {
	ID                 string         `db:"id"`
	AuthorID           string         `db:"author_id"`
	Title              string         `db:"title"`
	Content            string         `db:"content"`
	Category           string         `db:"category"`
	Tags               pq.StringArray `db:"tags"`
	Likes              int            `db:"likes"`
	QuizGateType       string         `db:"quiz_gate_type"`
	QuizGateDifficulty sql.NullInt16  `db:"quiz_gate_difficulty"`
	QuizGateQuizID     sql.NullString `db:"quiz_gate_quiz_id"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

// Poll represents a row of polls.
type Poll struct {
	ID                 string        `db:"id"`
	PostID             string        `db:"post_id"`
	Question           string        `db:"question"`
	EndsAt             sql.NullTime  `db:"ends_at"`
	TotalVotes         int           `db:"total_votes"`
	RequiredDifficulty sql.NullInt16 `db:"required_difficulty"`
}

// PollOption represents a row of poll_options.
type PollOption struct {
	ID       string `db:"id"`
	PollID   string `db:"poll_id"`
	Text     string `db:"text"`
	Position int    `db:"position"`
	Votes    int    `db:"votes"`
}

// Vote represents a row of votes.
type Vote struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	PostID    string    `db:"post_id"`
	OptionID  string    `db:"option_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Comment represents a row of comments.
type Comment struct {
	ID            string         `db:"id"`
	PostID        string         `db:"post_id"`
	AuthorID      string         `db:"author_id"`
	ParentID      sql.NullString `db:"parent_id"`
	RootCommentID sql.NullString `db:"root_comment_id"`
	Content       string         `db:"content"`
	Likes         int            `db:"likes"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// CommentWithAuthor is a comment joined with the author's display fields.
type CommentWithAuthor struct {
	Comment
	AuthorFirstName sql.NullString `db:"author_first_name"`
	AuthorLastName  sql.NullString `db:"author_last_name"`
	AuthorAvatarURL sql.NullString `db:"author_avatar_url"`
	AuthorIsAdmin   bool           `db:"author_is_admin"`
}
