package domain

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is a quiz tier. Tiers are compared by rank only.
type Difficulty int

const (
	DifficultyVotist  Difficulty = 1
	DifficultyScholar Difficulty = 2
	DifficultyMentor  Difficulty = 3
)

// AllDifficulties lists every tier in ascending rank.
var AllDifficulties = []Difficulty{DifficultyVotist, DifficultyScholar, DifficultyMentor}

func (d Difficulty) Rank() int {
	return int(d)
}

func (d Difficulty) Valid() bool {
	return d >= DifficultyVotist && d <= DifficultyMentor
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyVotist:
		return "VOTIST"
	case DifficultyScholar:
		return "SCHOLAR"
	case DifficultyMentor:
		return "MENTOR"
	default:
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
}

// AtOrBelow returns every tier whose rank is <= d, ascending.
func (d Difficulty) AtOrBelow() []Difficulty {
	var tiers []Difficulty
	for _, tier := range AllDifficulties {
		if tier.Rank() <= d.Rank() {
			tiers = append(tiers, tier)
		}
	}
	return tiers
}

// ParseDifficulty accepts a tier label in any case.
func ParseDifficulty(label string) (Difficulty, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "VOTIST":
		return DifficultyVotist, nil
	case "SCHOLAR":
		return DifficultyScholar, nil
	case "MENTOR":
		return DifficultyMentor, nil
	}
	return 0, fmt.Errorf("unknown difficulty %q", label)
}

// Quiz is an admin-authored quiz. PrerequisiteID links quizzes into chains.
type Quiz struct {
	ID             string
	Title          string
	Description    string
	Difficulty     Difficulty
	PassingScore   int
	Enabled        bool
	Sequence       int
	PrerequisiteID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Passes reports whether score meets the quiz's passing score.
func (q *Quiz) Passes(score int) bool {
	return score >= q.PassingScore
}

func (q *Quiz) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return NewInvalidInputError("quiz title is required")
	}
	if !q.Difficulty.Valid() {
		return NewInvalidInputError("quiz difficulty is invalid")
	}
	if q.PassingScore < 0 || q.PassingScore > MaxScore {
		return NewInvalidInputError(fmt.Sprintf("passing score must be between 0 and %d", MaxScore))
	}
	if q.PrerequisiteID != nil && *q.PrerequisiteID == q.ID {
		return NewInvalidInputError("quiz cannot be its own prerequisite")
	}
	return nil
}

// MaxScore is the upper bound of a quiz score.
const MaxScore = 100

// ProgressStatus is the per-user state of a quiz.
type ProgressStatus string

const (
	StatusLocked     ProgressStatus = "LOCKED"
	StatusAvailable  ProgressStatus = "AVAILABLE"
	StatusInProgress ProgressStatus = "IN_PROGRESS"
	StatusCompleted  ProgressStatus = "COMPLETED"
)

func (s ProgressStatus) Valid() bool {
	switch s {
	case StatusLocked, StatusAvailable, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a move from s to next is allowed.
// A failed submission returns IN_PROGRESS to AVAILABLE; a graded retake of a
// completed quiz may do the same.
func (s ProgressStatus) CanTransition(next ProgressStatus) bool {
	switch s {
	case StatusLocked:
		return next == StatusAvailable
	case StatusAvailable:
		return next == StatusInProgress || next == StatusCompleted
	case StatusInProgress:
		return next == StatusCompleted || next == StatusAvailable
	case StatusCompleted:
		return next == StatusAvailable
	}
	return false
}

// UserProgress is the single record per (user, quiz).
type UserProgress struct {
	UserID      string
	QuizID      string
	Status      ProgressStatus
	Score       int
	IsCompleted bool
	CompletedAt *time.Time
	StartedAt   *time.Time
	Answers     []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProgressEntry is a progress row joined with its quiz.
type ProgressEntry struct {
	Progress UserProgress
	Quiz     Quiz
}

// Passed reports whether the entry is a completed attempt meeting the quiz's
// passing score.
func (e ProgressEntry) Passed() bool {
	return e.Progress.IsCompleted && e.Quiz.Passes(e.Progress.Score)
}

// QuizResult is returned after grading a submission.
type QuizResult struct {
	Progress       UserProgress
	Passed         bool
	PassingScore   int
	UnlockedQuizID []string
}

// QuizSequenceUpdate moves one quiz to a new position.
type QuizSequenceUpdate struct {
	QuizID   string
	Sequence int
}
