package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxCommentLength is measured in characters, not bytes.
	MaxCommentLength = 2000
	// CommentEditWindow bounds non-admin edits from creation time.
	CommentEditWindow = 2 * time.Minute
)

// Comment is either a root (ParentID == nil, RootCommentID == nil) or a reply
// whose RootCommentID names the top-most ancestor.
type Comment struct {
	ID            string
	PostID        string
	AuthorID      string
	ParentID      *string
	RootCommentID *string
	Content       string
	Likes         int
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Author  *Author
	IsLiked bool
}

// Author carries display fields joined from users.
type Author struct {
	ID        string
	FirstName string
	LastName  string
	AvatarURL string
	IsAdmin   bool
}

func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// ThreadRoot returns the root id a reply to c must carry.
func (c *Comment) ThreadRoot() string {
	if c.RootCommentID != nil {
		return *c.RootCommentID
	}
	return c.ID
}

// CommentThread is a root comment with its flat, oldest-first replies.
type CommentThread struct {
	Comment
	Replies []Comment
}

// NormalizeCommentContent trims and validates comment text.
func NormalizeCommentContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", NewInvalidInputError("comment content cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxCommentLength {
		return "", NewInvalidInputError("comment content exceeds 2000 characters")
	}
	return trimmed, nil
}
