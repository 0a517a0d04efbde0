package dto

import (
	"time"

	"votist/internal/domain"
)

// CreateCommentRequest adds a root comment or a reply
// @Description Request body for creating a comment
type CreateCommentRequest struct {
	PostID   string  `json:"post_id"`
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id,omitempty"`
}

// UpdateCommentRequest replaces a comment's text
type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse represents a comment in the API response
type CommentResponse struct {
	ID            string          `json:"id"`
	PostID        string          `json:"post_id"`
	AuthorID      string          `json:"author_id"`
	ParentID      *string         `json:"parent_id,omitempty"`
	RootCommentID *string         `json:"root_comment_id,omitempty"`
	Content       string          `json:"content"`
	Likes         int             `json:"likes"`
	IsLiked       bool            `json:"is_liked"`
	Author        *AuthorResponse `json:"author,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CommentThreadResponse is a root comment with its replies, oldest first
type CommentThreadResponse struct {
	CommentResponse
	Replies []CommentResponse `json:"replies"`
}

func ToCommentResponse(c *domain.Comment) CommentResponse {
	resp := CommentResponse{
		ID:            c.ID,
		PostID:        c.PostID,
		AuthorID:      c.AuthorID,
		ParentID:      c.ParentID,
		RootCommentID: c.RootCommentID,
		Content:       c.Content,
		Likes:         c.Likes,
		IsLiked:       c.IsLiked,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if c.Author != nil {
		resp.Author = &AuthorResponse{
			ID:        c.Author.ID,
			FirstName: c.Author.FirstName,
			LastName:  c.Author.LastName,
			AvatarURL: c.Author.AvatarURL,
			IsAdmin:   c.Author.IsAdmin,
		}
	}
	return resp
}

func ToCommentThreadResponses(threads []domain.CommentThread) []CommentThreadResponse {
	out := make([]CommentThreadResponse, 0, len(threads))
	for i := range threads {
		replies := make([]CommentResponse, 0, len(threads[i].Replies))
		for j := range threads[i].Replies {
			replies = append(replies, ToCommentResponse(&threads[i].Replies[j]))
		}
		out = append(out, CommentThreadResponse{
			CommentResponse: ToCommentResponse(&threads[i].Comment),
			Replies:         replies,
		})
	}
	return out
}
