package dto

import (
	"strings"
	"time"

	"votist/internal/domain"
)

// QuizGateRequest configures who may participate on a post
type QuizGateRequest struct {
	Type       string  `json:"type"`
	Difficulty *string `json:"difficulty,omitempty"`
	QuizID     *string `json:"quiz_id,omitempty"`
}

// PollRequest is the optional poll attached to a new post
type PollRequest struct {
	Question           string     `json:"question"`
	Options            []string   `json:"options"`
	EndsAt             *time.Time `json:"ends_at,omitempty"`
	RequiredDifficulty *string    `json:"required_difficulty,omitempty"`
}

// CreatePostRequest is the admin request body for a new post
// @Description Request body for creating a post with an optional poll
type CreatePostRequest struct {
	Title    string           `json:"title"`
	Content  string           `json:"content"`
	Category string           `json:"category"`
	Tags     []string         `json:"tags"`
	QuizGate *QuizGateRequest `json:"quiz_gate,omitempty"`
	Poll     *PollRequest     `json:"poll,omitempty"`
}

// UpdatePostRequest replaces the editable fields of a post
// @Description Request body for editing a post
type UpdatePostRequest struct {
	Title    string           `json:"title"`
	Content  string           `json:"content"`
	Category string           `json:"category"`
	Tags     []string         `json:"tags"`
	QuizGate *QuizGateRequest `json:"quiz_gate,omitempty"`
}

// VoteRequest selects a poll option
type VoteRequest struct {
	OptionID string `json:"option_id"`
}

type QuizGateResponse struct {
	Type       string  `json:"type"`
	Difficulty *string `json:"difficulty,omitempty"`
	QuizID     *string `json:"quiz_id,omitempty"`
}

type PollOptionResponse struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type PollResponse struct {
	ID                 string               `json:"id"`
	Question           string               `json:"question"`
	EndsAt             *time.Time           `json:"ends_at,omitempty"`
	TotalVotes         int                  `json:"total_votes"`
	RequiredDifficulty *string              `json:"required_difficulty,omitempty"`
	Options            []PollOptionResponse `json:"options"`
}

type GateDecisionResponse struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message,omitempty"`
}

// PostResponse represents a post in the API response
// @Description Post with its poll and the viewer's state
type PostResponse struct {
	ID             string                `json:"id"`
	AuthorID       string                `json:"author_id"`
	Title          string                `json:"title"`
	Content        string                `json:"content"`
	Category       string                `json:"category,omitempty"`
	Tags           []string              `json:"tags"`
	Likes          int                   `json:"likes"`
	QuizGate       QuizGateResponse      `json:"quiz_gate"`
	Poll           *PollResponse         `json:"poll,omitempty"`
	ViewerOptionID string                `json:"viewer_option_id,omitempty"`
	ViewerLiked    bool                  `json:"viewer_liked"`
	Gate           *GateDecisionResponse `json:"gate,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// PostListResponse is a page of posts
type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	Pagination PaginationInfo `json:"pagination"`
}

// VoteResponse is the poll state after a vote
type VoteResponse struct {
	Poll             PollResponse `json:"poll"`
	SelectedOptionID string       `json:"selected_option_id,omitempty"`
	Changed          bool         `json:"changed"`
}

// LikeResponse is the result of a like toggle
type LikeResponse struct {
	Likes   int  `json:"likes"`
	IsLiked bool `json:"is_liked"`
}

func difficultyLabel(d *domain.Difficulty) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func ToQuizGateResponse(gate domain.QuizGate) QuizGateResponse {
	gateType, difficulty, quizID := domain.EncodeQuizGate(gate)
	return QuizGateResponse{Type: string(gateType), Difficulty: difficultyLabel(difficulty), QuizID: quizID}
}

func ToPollResponse(p *domain.Poll) *PollResponse {
	if p == nil {
		return nil
	}
	options := make([]PollOptionResponse, 0, len(p.Options))
	for _, o := range p.Options {
		options = append(options, PollOptionResponse{ID: o.ID, Text: o.Text, Votes: o.Votes})
	}
	return &PollResponse{
		ID:                 p.ID,
		Question:           p.Question,
		EndsAt:             p.EndsAt,
		TotalVotes:         p.TotalVotes,
		RequiredDifficulty: difficultyLabel(p.RequiredDifficulty),
		Options:            options,
	}
}

func ToPostResponse(p *domain.Post) PostResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Title:     p.Title,
		Content:   p.Content,
		Category:  p.Category,
		Tags:      tags,
		Likes:     p.Likes,
		QuizGate:  ToQuizGateResponse(p.QuizGate()),
		Poll:      ToPollResponse(p.Poll),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToPostViewResponse(v *domain.PostView) PostResponse {
	resp := ToPostResponse(&v.Post)
	resp.ViewerOptionID = v.ViewerOptionID
	resp.ViewerLiked = v.ViewerLiked
	if v.Gate != nil {
		resp.Gate = &GateDecisionResponse{Allowed: v.Gate.Allowed, Message: v.Gate.Message}
	}
	return resp
}

func ToVoteResponse(o *domain.VoteOutcome) VoteResponse {
	return VoteResponse{
		Poll:             *ToPollResponse(&o.Poll),
		SelectedOptionID: o.SelectedOptionID,
		Changed:          o.Changed,
	}
}

// ToQuizGate converts a validated gate request. A nil request means no gate.
func ToQuizGate(r *QuizGateRequest) domain.QuizGate {
	if r == nil {
		return domain.NoGate{}
	}
	switch domain.GateType(strings.ToUpper(r.Type)) {
	case domain.GateTypeDifficulty:
		if r.Difficulty != nil {
			if d, err := domain.ParseDifficulty(*r.Difficulty); err == nil {
				return domain.DifficultyGate{Difficulty: d}
			}
		}
	case domain.GateTypeSpecificQuiz:
		if r.QuizID != nil {
			return domain.SpecificQuizGate{QuizID: *r.QuizID}
		}
	}
	return domain.NoGate{}
}

// ToPost converts a validated create request into a post with its poll.
func (r *CreatePostRequest) ToPost() *domain.Post {
	post := &domain.Post{
		Title:    strings.TrimSpace(r.Title),
		Content:  r.Content,
		Category: r.Category,
		Tags:     r.Tags,
		Gate:     ToQuizGate(r.QuizGate),
	}
	if r.Poll == nil {
		return post
	}
	poll := &domain.Poll{
		Question: strings.TrimSpace(r.Poll.Question),
		EndsAt:   r.Poll.EndsAt,
	}
	if r.Poll.RequiredDifficulty != nil {
		if d, err := domain.ParseDifficulty(*r.Poll.RequiredDifficulty); err == nil {
			poll.RequiredDifficulty = &d
		}
	}
	for i, text := range r.Poll.Options {
		poll.Options = append(poll.Options, domain.PollOption{Text: strings.TrimSpace(text), Position: i})
	}
	post.Poll = poll
	return post
}

// ToPost converts a validated update request; id comes from the path.
// Gate stays nil when the body has no quiz_gate so the stored gate is kept.
func (r *UpdatePostRequest) ToPost(id string) *domain.Post {
	post := &domain.Post{
		ID:       id,
		Title:    strings.TrimSpace(r.Title),
		Content:  r.Content,
		Category: r.Category,
		Tags:     r.Tags,
	}
	if r.QuizGate != nil {
		post.Gate = ToQuizGate(r.QuizGate)
	}
	return post
}
