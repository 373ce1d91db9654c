package entities

import (
	"errors"
	"slices"
	"strings"
)

// OptionsPerQuestion is the fixed number of choices of every question.
const OptionsPerQuestion = 4

var (
	ErrQuestionText       = errors.New("question text is empty")
	ErrQuestionOptions    = errors.New("question must have exactly 4 non-empty options")
	ErrCorrectAnswerIndex = errors.New("correct answer index must be within [0,3]")
)

// Question is a multiple-choice question with exactly four options.
type Question struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswer"`
}

// NewBlankQuestion returns a question with empty text and four empty options.
func NewBlankQuestion() Question {
	return Question{
		Options: make([]string, OptionsPerQuestion),
	}
}

// Validate checks the question shape: non-empty text, four non-empty options
// and an in-bounds correct answer index.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrQuestionText
	}
	if len(q.Options) != OptionsPerQuestion {
		return ErrQuestionOptions
	}
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return ErrQuestionOptions
		}
	}
	if !ValidOptionIndex(q.CorrectAnswerIndex) {
		return ErrCorrectAnswerIndex
	}
	return nil
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	out := q
	out.Options = append([]string(nil), q.Options...)
	return out
}

// Equal reports whether q and o have the same text, options and correct index.
func (q Question) Equal(o Question) bool {
	return q.Text == o.Text &&
		q.CorrectAnswerIndex == o.CorrectAnswerIndex &&
		slices.Equal(q.Options, o.Options)
}

// ValidOptionIndex reports whether i addresses one of the four options.
func ValidOptionIndex(i int) bool {
	return i >= 0 && i < OptionsPerQuestion
}

// CloneQuestions deep-copies a question list.
func CloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
