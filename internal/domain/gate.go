package domain

import (
	"errors"
	"fmt"
)

// GateType is the stored tag of a post's quiz gate.
type GateType string

const (
	GateTypeNone         GateType = "NONE"
	GateTypeDifficulty   GateType = "DIFFICULTY"
	GateTypeSpecificQuiz GateType = "SPECIFIC_QUIZ"
)

// QuizGate is a closed set of gate variants. Only types in this package
// implement it.
type QuizGate interface {
	Type() GateType
	isQuizGate()
}

// NoGate allows everyone.
type NoGate struct{}

// DifficultyGate requires a pass on every enabled quiz at or below Difficulty.
type DifficultyGate struct {
	Difficulty Difficulty
}

// SpecificQuizGate requires a pass on one quiz.
type SpecificQuizGate struct {
	QuizID string
}

func (NoGate) Type() GateType           { return GateTypeNone }
func (DifficultyGate) Type() GateType   { return GateTypeDifficulty }
func (SpecificQuizGate) Type() GateType { return GateTypeSpecificQuiz }

func (NoGate) isQuizGate()           {}
func (DifficultyGate) isQuizGate()   {}
func (SpecificQuizGate) isQuizGate() {}

// ErrUnknownGateType is returned by DecodeQuizGate for unrecognised tags.
var ErrUnknownGateType = errors.New("unknown quiz gate type")

// DecodeQuizGate builds a gate from its stored columns. An empty tag is NoGate.
// Unknown tags return NoGate together with ErrUnknownGateType so callers can
// log and fail open. A variant missing its payload also degrades to NoGate.
func DecodeQuizGate(gateType string, difficulty *Difficulty, quizID *string) (QuizGate, error) {
	switch GateType(gateType) {
	case "", GateTypeNone:
		return NoGate{}, nil
	case GateTypeDifficulty:
		if difficulty == nil || !difficulty.Valid() {
			return NoGate{}, fmt.Errorf("difficulty gate without a valid tier")
		}
		return DifficultyGate{Difficulty: *difficulty}, nil
	case GateTypeSpecificQuiz:
		if quizID == nil || *quizID == "" {
			return NoGate{}, fmt.Errorf("specific quiz gate without a quiz id")
		}
		return SpecificQuizGate{QuizID: *quizID}, nil
	}
	return NoGate{}, fmt.Errorf("%w: %q", ErrUnknownGateType, gateType)
}

// EncodeQuizGate is the inverse of DecodeQuizGate.
func EncodeQuizGate(gate QuizGate) (GateType, *Difficulty, *string) {
	switch g := gate.(type) {
	case DifficultyGate:
		d := g.Difficulty
		return GateTypeDifficulty, &d, nil
	case SpecificQuizGate:
		id := g.QuizID
		return GateTypeSpecificQuiz, nil, &id
	default:
		return GateTypeNone, nil, nil
	}
}

// GateDecision is the evaluator's answer. Message is set when not allowed.
type GateDecision struct {
	Allowed bool
	Message string
}

func Allow() GateDecision {
	return GateDecision{Allowed: true}
}

func Deny(message string) GateDecision {
	return GateDecision{Allowed: false, Message: message}
}
