package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// Answer is a chosen option index or Unanswered.
type Answer int

// Unanswered marks an answer slot the user has not set.
const Unanswered Answer = -1

var ErrInvalidAnswer = errors.New("answer must be null or a non-negative option index")

// AnswerOf wraps an option index.
func AnswerOf(i int) Answer {
	return Answer(i)
}

// Index returns the option index and whether the slot is answered.
func (a Answer) Index() (int, bool) {
	if a < 0 {
		return 0, false
	}
	return int(a), true
}

// Answered reports whether the slot holds an option index.
func (a Answer) Answered() bool {
	return a >= 0
}

// MarshalJSON encodes unanswered slots as null.
func (a Answer) MarshalJSON() ([]byte, error) {
	if !a.Answered() {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(a))), nil
}

// UnmarshalJSON decodes null as Unanswered.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Unanswered
		return nil
	}

	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return ErrInvalidAnswer
	}
	if i < 0 {
		return ErrInvalidAnswer
	}

	*a = Answer(i)
	return nil
}

// NewAnswerSheet returns n unanswered slots.
func NewAnswerSheet(n int) []Answer {
	sheet := make([]Answer, n)
	for i := range sheet {
		sheet[i] = Unanswered
	}
	return sheet
}

// HasUnanswered reports whether any slot is still unanswered.
func HasUnanswered(answers []Answer) bool {
	for _, a := range answers {
		if !a.Answered() {
			return true
		}
	}
	return false
}
