package handlers

import (
	"time"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
	"github.com/aliskhannn/quizroom/internal/service"
)

type userView struct {
	ID    string        `json:"id"`
	Email string        `json:"email"`
	Role  entities.Role `json:"role"`
}

type sessionView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      userView  `json:"user"`
}

func newSessionView(s *service.Session) sessionView {
	return sessionView{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      userView{ID: s.Identity.UserID, Email: s.Identity.Email, Role: s.Role},
	}
}

type testSummaryView struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Duration      int       `json:"duration"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// takerQuestionView is a question without its correct answer.
type takerQuestionView struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type testView struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Duration  int                 `json:"duration"`
	CreatedAt time.Time           `json:"createdAt"`
	Questions []takerQuestionView `json:"questions"`
}

func newTestView(t *entities.TestDefinition) testView {
	qs := make([]takerQuestionView, 0, len(t.Questions))
	for _, q := range t.Questions {
		qs = append(qs, takerQuestionView{Text: q.Text, Options: append([]string(nil), q.Options...)})
	}
	return testView{
		ID:        t.ID,
		Title:     t.Title,
		Duration:  t.DurationMinutes,
		CreatedAt: t.CreatedAt,
		Questions: qs,
	}
}

type resultView struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	Email       string            `json:"email,omitempty"`
	TestID      string            `json:"testId"`
	TestTitle   string            `json:"testTitle"`
	Score       int               `json:"score"`
	Total       int               `json:"total"`
	Percentage  float64           `json:"percentage"`
	Answers     []entities.Answer `json:"answers"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

func newResultView(res *entities.Result, email string) resultView {
	return resultView{
		ID:          res.ID,
		UserID:      res.UserID,
		Email:       email,
		TestID:      res.TestID,
		TestTitle:   res.TestTitle,
		Score:       res.Score,
		Total:       res.Total,
		Percentage:  res.Percentage(),
		Answers:     res.Answers,
		SubmittedAt: res.SubmittedAt,
	}
}

type attemptView struct {
	ID               string               `json:"id"`
	State            service.AttemptState `json:"state"`
	RemainingSeconds int                  `json:"remainingSeconds"`
	Answers          []entities.Answer    `json:"answers"`
	Test             testView             `json:"test"`
	Result           *resultView          `json:"result,omitempty"`
	LastError        string               `json:"lastError,omitempty"`
	StartedAt        time.Time            `json:"startedAt"`
	FinishedAt       *time.Time           `json:"finishedAt,omitempty"`
}

func newAttemptView(s service.AttemptSnapshot) attemptView {
	v := attemptView{
		ID:               s.ID,
		State:            s.State,
		RemainingSeconds: s.RemainingSeconds,
		Answers:          s.Answers,
		Test:             newTestView(s.Test),
		LastError:        s.LastError,
		StartedAt:        s.StartedAt,
	}
	if s.Result != nil {
		rv := newResultView(s.Result, "")
		v.Result = &rv
	}
	if !s.FinishedAt.IsZero() {
		finished := s.FinishedAt
		v.FinishedAt = &finished
	}
	return v
}

type draftView struct {
	Title     string              `json:"title"`
	Duration  int                 `json:"duration"`
	Questions []entities.Question `json:"questions"`
	Ready     bool                `json:"ready"` // submit is enabled
	Problem   string              `json:"problem,omitempty"`
}

func newDraftView(d entities.TestDraft) draftView {
	v := draftView{
		Title:     d.Title,
		Duration:  d.DurationMinutes,
		Questions: d.Questions,
		Ready:     true,
	}
	if err := d.Validate(); err != nil {
		v.Ready = false
		v.Problem = err.Error()
	}
	return v
}
