package dto

import (
	"encoding/json"
	"time"

	"votist/internal/domain"
)

// QuizResponse represents a quiz in the API response
// @Description Quiz information
type QuizResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Difficulty     string  `json:"difficulty"`
	PassingScore   int     `json:"passing_score"`
	Sequence       int     `json:"sequence"`
	PrerequisiteID *string `json:"prerequisite_id,omitempty"`
	Enabled        bool    `json:"enabled"`
}

// CreateQuizRequest is the admin request body for a new quiz
// @Description Request body for creating a quiz
type CreateQuizRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Difficulty     string  `json:"difficulty"`
	PassingScore   int     `json:"passing_score"`
	Sequence       int     `json:"sequence"`
	PrerequisiteID *string `json:"prerequisite_id"`
	Enabled        *bool   `json:"enabled"`
}

// SequenceUpdate moves one quiz
type SequenceUpdate struct {
	QuizID   string `json:"quiz_id"`
	Sequence int    `json:"sequence"`
}

// UpdateSequenceRequest reorders quizzes in one batch
// @Description Request body for reordering quizzes
type UpdateSequenceRequest struct {
	Updates []SequenceUpdate `json:"updates"`
}

// SubmitQuizRequest carries a graded attempt
// @Description Request body for submitting a quiz attempt
type SubmitQuizRequest struct {
	Score   *int            `json:"score"`
	Answers json.RawMessage `json:"answers,omitempty" swaggertype:"object"`
}

// ProgressResponse is one quiz's state for the caller
type ProgressResponse struct {
	QuizID      string        `json:"quiz_id"`
	Status      string        `json:"status"`
	Score       int           `json:"score"`
	IsCompleted bool          `json:"is_completed"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Quiz        *QuizResponse `json:"quiz,omitempty"`
}

// QuizResultResponse is returned after a submission and by the result endpoint
type QuizResultResponse struct {
	Progress       ProgressResponse `json:"progress"`
	Passed         bool             `json:"passed"`
	PassingScore   int              `json:"passing_score"`
	UnlockedQuizID []string         `json:"unlocked_quiz_ids,omitempty"`
}

// InitProgressResponse reports how many progress rows were seeded
type InitProgressResponse struct {
	Created int `json:"created"`
}

func ToQuizResponse(q *domain.Quiz) QuizResponse {
	return QuizResponse{
		ID:             q.ID,
		Title:          q.Title,
		Description:    q.Description,
		Difficulty:     q.Difficulty.String(),
		PassingScore:   q.PassingScore,
		Sequence:       q.Sequence,
		PrerequisiteID: q.PrerequisiteID,
		Enabled:        q.Enabled,
	}
}

func ToQuizResponses(quizzes []domain.Quiz) []QuizResponse {
	out := make([]QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		out = append(out, ToQuizResponse(&quizzes[i]))
	}
	return out
}

func ToProgressResponse(p *domain.UserProgress) ProgressResponse {
	return ProgressResponse{
		QuizID:      p.QuizID,
		Status:      string(p.Status),
		Score:       p.Score,
		IsCompleted: p.IsCompleted,
		StartedAt:   p.StartedAt,
		CompletedAt: p.CompletedAt,
	}
}

func ToProgressResponses(entries []domain.ProgressEntry) []ProgressResponse {
	out := make([]ProgressResponse, 0, len(entries))
	for i := range entries {
		resp := ToProgressResponse(&entries[i].Progress)
		quiz := ToQuizResponse(&entries[i].Quiz)
		resp.Quiz = &quiz
		out = append(out, resp)
	}
	return out
}

func ToQuizResultResponse(r *domain.QuizResult) QuizResultResponse {
	return QuizResultResponse{
		Progress:       ToProgressResponse(&r.Progress),
		Passed:         r.Passed,
		PassingScore:   r.PassingScore,
		UnlockedQuizID: r.UnlockedQuizID,
	}
}

// ToQuiz converts a validated create request. Enabled defaults to true.
func (r *CreateQuizRequest) ToQuiz() *domain.Quiz {
	difficulty, _ := domain.ParseDifficulty(r.Difficulty)
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return &domain.Quiz{
		Title:          r.Title,
		Description:    r.Description,
		Difficulty:     difficulty,
		PassingScore:   r.PassingScore,
		Sequence:       r.Sequence,
		PrerequisiteID: r.PrerequisiteID,
		Enabled:        enabled,
	}
}

func (r *UpdateSequenceRequest) ToSequenceUpdates() []domain.QuizSequenceUpdate {
	out := make([]domain.QuizSequenceUpdate, 0, len(r.Updates))
	for _, u := range r.Updates {
		out = append(out, domain.QuizSequenceUpdate{QuizID: u.QuizID, Sequence: u.Sequence})
	}
	return out
}
