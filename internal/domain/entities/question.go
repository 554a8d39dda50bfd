package entities

import (
	"errors"
	"fmt"
)

const (
	MinOptions = 2
	MaxOptions = 4
)

var (
	ErrTooFewOptions     = errors.New("question has too few options")
	ErrTooManyOptions    = errors.New("question has too many options")
	ErrCorrectOutOfRange = errors.New("correct answer index out of range")
	ErrEmptyPrompt       = errors.New("question prompt is empty")
)

// Question is a single multiple choice question from the bank.
type Question struct {
	ID           int      `json:"id"`                    // position in the bank, used as question identity
	Prompt       string   `json:"question"`              // question text shown to the user
	Options      []string `json:"options"`               // 2-4 answer options in display order
	CorrectIndex int      `json:"correct"`               // index into Options of the right answer
	Explanation  string   `json:"explanation,omitempty"` // optional text shown after a wrong answer
}

// Validate checks the structural invariants of a question.
func (q *Question) Validate() error {
	if q.Prompt == "" {
		return ErrEmptyPrompt
	}
	if len(q.Options) < MinOptions {
		return ErrTooFewOptions
	}
	if len(q.Options) > MaxOptions {
		return ErrTooManyOptions
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("question %d: %w", q.ID, ErrCorrectOutOfRange)
	}
	return nil
}

// IsCorrect reports whether the chosen option index is the right answer.
func (q *Question) IsCorrect(chosen int) bool {
	return chosen == q.CorrectIndex
}
