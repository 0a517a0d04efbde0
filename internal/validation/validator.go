package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"votist/internal/domain"
	"votist/internal/dto"
)

const (
	maxTitleLength    = 200
	maxCategoryLength = 50
	maxTags           = 10
	minPollOptions    = 2
	maxPollOptions    = 10
	maxSearchLength   = 100
)

var (
	validULID     = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	validCategory = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateID checks a path or body identifier.
func (v *Validator) ValidateID(field, id string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError(field))
	} else if !isValidULID(id) {
		errors = append(errors, domain.NewInvalidFormatError(field, id))
	}
	return errors
}

// ValidatePagination checks page and limit query parameters.
func (v *Validator) ValidatePagination(page, limit, maxLimit int) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if page < 1 {
		errors = append(errors, domain.NewOutOfRangeError("page", page, 1, 1<<31-1))
	}
	if limit < 1 || limit > maxLimit {
		errors = append(errors, domain.NewOutOfRangeError("limit", limit, 1, maxLimit))
	}
	return errors
}

// ValidateComment applies the comment length rules before trimming.
func (v *Validator) ValidateComment(content string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		errors = append(errors, domain.NewMissingFieldError("content"))
	} else if n := utf8.RuneCountInString(trimmed); n > domain.MaxCommentLength {
		errors = append(errors, domain.NewOutOfRangeError("content", n, 1, domain.MaxCommentLength))
	}
	return errors
}

func (v *Validator) ValidateCreateComment(req *dto.CreateCommentRequest) domain.ValidationErrors {
	errors := v.ValidateID("post_id", req.PostID)
	if req.ParentID != nil {
		errors = append(errors, v.ValidateID("parent_id", *req.ParentID)...)
	}
	return append(errors, v.ValidateComment(req.Content)...)
}

func (v *Validator) ValidateQuizGate(gate *dto.QuizGateRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if gate == nil {
		return errors
	}
	switch domain.GateType(strings.ToUpper(gate.Type)) {
	case "", domain.GateTypeNone:
	case domain.GateTypeDifficulty:
		if gate.Difficulty == nil || *gate.Difficulty == "" {
			errors = append(errors, domain.NewMissingFieldError("quiz_gate.difficulty"))
		} else if _, err := domain.ParseDifficulty(*gate.Difficulty); err != nil {
			errors = append(errors, domain.NewInvalidFormatError("quiz_gate.difficulty", *gate.Difficulty))
		}
	case domain.GateTypeSpecificQuiz:
		if gate.QuizID == nil {
			errors = append(errors, domain.NewMissingFieldError("quiz_gate.quiz_id"))
		} else {
			errors = append(errors, v.ValidateID("quiz_gate.quiz_id", *gate.QuizID)...)
		}
	default:
		errors = append(errors, domain.NewInvalidFormatError("quiz_gate.type", gate.Type))
	}
	return errors
}

func (v *Validator) validatePostFields(title, content, category string, tags []string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(title) == "" {
		errors = append(errors, domain.NewMissingFieldError("title"))
	} else if n := utf8.RuneCountInString(title); n > maxTitleLength {
		errors = append(errors, domain.NewOutOfRangeError("title", n, 1, maxTitleLength))
	}
	if strings.TrimSpace(content) == "" {
		errors = append(errors, domain.NewMissingFieldError("content"))
	}
	if category != "" && (len(category) > maxCategoryLength || !validCategory.MatchString(category)) {
		errors = append(errors, domain.NewInvalidFormatError("category", category))
	}
	if len(tags) > maxTags {
		errors = append(errors, domain.NewOutOfRangeError("tags", len(tags), 0, maxTags))
	}
	return errors
}

func (v *Validator) ValidateCreatePost(req *dto.CreatePostRequest) domain.ValidationErrors {
	errors := v.validatePostFields(req.Title, req.Content, req.Category, req.Tags)
	errors = append(errors, v.ValidateQuizGate(req.QuizGate)...)
	if req.Poll == nil {
		return errors
	}
	if strings.TrimSpace(req.Poll.Question) == "" {
		errors = append(errors, domain.NewMissingFieldError("poll.question"))
	}
	if n := len(req.Poll.Options); n < minPollOptions || n > maxPollOptions {
		errors = append(errors, domain.NewOutOfRangeError("poll.options", n, minPollOptions, maxPollOptions))
	}
	for _, option := range req.Poll.Options {
		if strings.TrimSpace(option) == "" {
			errors = append(errors, domain.NewValidationError("poll options cannot be empty"))
			break
		}
	}
	if d := req.Poll.RequiredDifficulty; d != nil {
		if _, err := domain.ParseDifficulty(*d); err != nil {
			errors = append(errors, domain.NewInvalidFormatError("poll.required_difficulty", *d))
		}
	}
	return errors
}

func (v *Validator) ValidateUpdatePost(req *dto.UpdatePostRequest) domain.ValidationErrors {
	errors := v.validatePostFields(req.Title, req.Content, req.Category, req.Tags)
	return append(errors, v.ValidateQuizGate(req.QuizGate)...)
}

func (v *Validator) ValidateCreateQuiz(req *dto.CreateQuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(req.Title) == "" {
		errors = append(errors, domain.NewMissingFieldError("title"))
	}
	if _, err := domain.ParseDifficulty(req.Difficulty); err != nil {
		errors = append(errors, domain.NewInvalidFormatError("difficulty", req.Difficulty))
	}
	if req.PassingScore < 0 || req.PassingScore > domain.MaxScore {
		errors = append(errors, domain.NewOutOfRangeError("passing_score", req.PassingScore, 0, domain.MaxScore))
	}
	if req.Sequence < 0 {
		errors = append(errors, domain.NewOutOfRangeError("sequence", req.Sequence, 0, 1<<31-1))
	}
	if req.PrerequisiteID != nil {
		errors = append(errors, v.ValidateID("prerequisite_id", *req.PrerequisiteID)...)
	}
	return errors
}

func (v *Validator) ValidateSubmitQuiz(req *dto.SubmitQuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if req.Score == nil {
		errors = append(errors, domain.NewMissingFieldError("score"))
	} else if *req.Score < 0 || *req.Score > domain.MaxScore {
		errors = append(errors, domain.NewOutOfRangeError("score", *req.Score, 0, domain.MaxScore))
	}
	return errors
}

func (v *Validator) ValidateSearchQuery(q string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(q) == "" {
		errors = append(errors, domain.NewMissingFieldError("q"))
	} else if len(q) > maxSearchLength {
		errors = append(errors, domain.NewOutOfRangeError("q", len(q), 1, maxSearchLength))
	}
	return errors
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	return len(s) == 26 && validULID.MatchString(strings.ToUpper(s))
}
