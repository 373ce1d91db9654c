package entities

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DefaultDurationMinutes is the duration of a fresh draft.
const DefaultDurationMinutes = 30

var (
	ErrDraftIncomplete   = errors.New("test draft is incomplete")
	ErrQuestionPosition  = errors.New("question position out of range")
	ErrOptionPosition    = errors.New("option position out of range")
	ErrInvalidOptionList = errors.New("options must contain exactly 4 entries")
)

// TestDraft is the authoring state of a test. It is a value: every edit returns
// a new draft and never touches the receiver.
type TestDraft struct {
	Title           string
	DurationMinutes int
	Questions       []Question
}

// OptionEdit replaces a single option of a question.
type OptionEdit struct {
	Index int
	Value string
}

// QuestionPatch describes a partial update of one question. Nil fields are left as is.
type QuestionPatch struct {
	Text               *string
	Options            []string
	Option             *OptionEdit
	CorrectAnswerIndex *int
}

// NewTestDraft returns the initial draft: no title, the default duration and one blank question.
func NewTestDraft() TestDraft {
	return TestDraft{
		DurationMinutes: DefaultDurationMinutes,
		Questions:       []Question{NewBlankQuestion()},
	}
}

// Clone returns a deep copy of d.
func (d TestDraft) Clone() TestDraft {
	out := d
	out.Questions = CloneQuestions(d.Questions)
	return out
}

// Equal reports whether d and o hold the same content.
func (d TestDraft) Equal(o TestDraft) bool {
	return d.Title == o.Title &&
		d.DurationMinutes == o.DurationMinutes &&
		slices.EqualFunc(d.Questions, o.Questions, Question.Equal)
}

// WithTitle returns a copy with the title replaced.
func (d TestDraft) WithTitle(title string) TestDraft {
	out := d.Clone()
	out.Title = title
	return out
}

// WithDuration returns a copy with the duration replaced.
func (d TestDraft) WithDuration(minutes int) TestDraft {
	out := d.Clone()
	out.DurationMinutes = minutes
	return out
}

// AppendQuestion returns a copy with a blank question appended.
func (d TestDraft) AppendQuestion() TestDraft {
	out := d.Clone()
	out.Questions = append(out.Questions, NewBlankQuestion())
	return out
}

// WithQuestions returns a copy whose question list is replaced wholesale.
func (d TestDraft) WithQuestions(qs []Question) TestDraft {
	out := d.Clone()
	out.Questions = CloneQuestions(qs)
	return out
}

// UpdateQuestion returns a copy with the question at pos patched.
func (d TestDraft) UpdateQuestion(pos int, p QuestionPatch) (TestDraft, error) {
	if pos < 0 || pos >= len(d.Questions) {
		return d, fmt.Errorf("%w: %d", ErrQuestionPosition, pos)
	}

	out := d.Clone()
	q := out.Questions[pos]

	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Options != nil {
		if len(p.Options) != OptionsPerQuestion {
			return d, ErrInvalidOptionList
		}
		q.Options = append([]string(nil), p.Options...)
	}
	if p.Option != nil {
		if !ValidOptionIndex(p.Option.Index) {
			return d, fmt.Errorf("%w: %d", ErrOptionPosition, p.Option.Index)
		}
		if len(q.Options) != OptionsPerQuestion {
			return d, ErrInvalidOptionList
		}
		q.Options[p.Option.Index] = p.Option.Value
	}
	if p.CorrectAnswerIndex != nil {
		if !ValidOptionIndex(*p.CorrectAnswerIndex) {
			return d, ErrCorrectAnswerIndex
		}
		q.CorrectAnswerIndex = *p.CorrectAnswerIndex
	}

	out.Questions[pos] = q
	return out, nil
}

// Validate reports why the draft cannot be submitted, or nil.
func (d TestDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is empty", ErrDraftIncomplete)
	}
	if d.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrDraftIncomplete)
	}
	if len(d.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrDraftIncomplete)
	}
	for i, q := range d.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("%w: question %d: %w", ErrDraftIncomplete, i+1, err)
		}
	}
	return nil
}

// Definition builds the test definition to persist. ID and CreatedAt are left
// for the store; createdAt is only a fallback for stores that do not assign one.
func (d TestDraft) Definition(createdBy string, createdAt time.Time) *TestDefinition {
	return &TestDefinition{
		Title:           strings.TrimSpace(d.Title),
		DurationMinutes: d.DurationMinutes,
		CreatedAt:       createdAt,
		CreatedBy:       createdBy,
		Questions:       CloneQuestions(d.Questions),
	}
}
