package entities

import "time"

// TestDefinition is an authored test. It is never edited after creation.
type TestDefinition struct {
	ID              string     // assigned by the store
	Title           string     // display title
	DurationMinutes int        // positive time limit
	CreatedAt       time.Time  // assigned by the store
	CreatedBy       string     // identity of the author
	Questions       []Question // ordered questions
}

// DurationSeconds returns the countdown length of an attempt.
func (t *TestDefinition) DurationSeconds() int {
	return t.DurationMinutes * 60
}

// QuestionCount returns the number of questions.
func (t *TestDefinition) QuestionCount() int {
	return len(t.Questions)
}

// Score counts the positions where the answer equals the correct option index.
// Unanswered slots never match.
func (t *TestDefinition) Score(answers []Answer) int {
	score := 0
	for i, q := range t.Questions {
		if i >= len(answers) {
			break
		}
		if idx, ok := answers[i].Index(); ok && idx == q.CorrectAnswerIndex {
			score++
		}
	}
	return score
}
