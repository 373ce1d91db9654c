package entities

import (
	"math"
	"time"
)

// Result is the record of one submitted attempt. It is never mutated.
type Result struct {
	ID          string    // assigned by the store
	UserID      string    // identity that took the test
	TestID      string    // attempted test
	TestTitle   string    // copy of the test title at submission time
	Score       int       // number of correct answers
	Total       int       // number of questions
	Answers     []Answer  // full answer sheet, unanswered slots included
	SubmittedAt time.Time // submission timestamp
}

// NewResult scores answers against test and builds the result record.
func NewResult(userID string, test *TestDefinition, answers []Answer, submittedAt time.Time) *Result {
	sheet := append([]Answer(nil), answers...)

	return &Result{
		UserID:      userID,
		TestID:      test.ID,
		TestTitle:   test.Title,
		Score:       test.Score(sheet),
		Total:       test.QuestionCount(),
		Answers:     sheet,
		SubmittedAt: submittedAt,
	}
}

// Percentage returns score/total*100 rounded to two decimals.
func (r *Result) Percentage() float64 {
	return Percentage(r.Score, r.Total)
}

// Percentage returns score/total*100 rounded to two decimals, 0 for an empty total.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*100*100) / 100
}
