package service

import (
	"sync"
	"time"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

// AttemptState is the lifecycle position of a test attempt.
type AttemptState string

const (
	AttemptInProgress AttemptState = "in_progress" // countdown running, answers editable
	AttemptSubmitting AttemptState = "submitting"  // result write in flight
	AttemptSubmitted  AttemptState = "submitted"   // result stored, terminal
	AttemptExpired    AttemptState = "expired"     // time is up but the result is not stored yet
	AttemptAbandoned  AttemptState = "abandoned"   // left without submitting, terminal
)

// SubmitTrigger names what started a submission.
type SubmitTrigger string

const (
	TriggerManual SubmitTrigger = "manual"
	TriggerTimer  SubmitTrigger = "timer"
)

// AttemptSnapshot is a consistent copy of an attempt's state.
type AttemptSnapshot struct {
	ID               string
	Test             *entities.TestDefinition
	State            AttemptState
	RemainingSeconds int
	Answers          []entities.Answer
	Result           *entities.Result
	LastError        string
	StartedAt        time.Time
	FinishedAt       time.Time
}

// Attempt is one run of a test by one identity. All fields are guarded by mu.
// The countdown goroutine and request handlers both drive it; the state machine
// lets at most one submission write proceed at a time and none after success.
type Attempt struct {
	mu sync.Mutex

	id       string
	identity entities.Identity
	test     *entities.TestDefinition

	answers   []entities.Answer
	remaining int
	state     AttemptState
	resume    AttemptState // state restored when a write fails
	expired   bool
	result    *entities.Result
	lastErr   string

	startedAt  time.Time
	finishedAt time.Time

	ticker   Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func newAttempt(id string, identity entities.Identity, test *entities.TestDefinition, ticker Ticker, now time.Time) *Attempt {
	return &Attempt{
		id:        id,
		identity:  identity,
		test:      test,
		answers:   entities.NewAnswerSheet(test.QuestionCount()),
		remaining: test.DurationSeconds(),
		state:     AttemptInProgress,
		startedAt: now,
		ticker:    ticker,
		done:      make(chan struct{}),
	}
}

// Snapshot copies the current state.
func (a *Attempt) Snapshot() AttemptSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	return AttemptSnapshot{
		ID:               a.id,
		Test:             a.test,
		State:            a.state,
		RemainingSeconds: a.remaining,
		Answers:          append([]entities.Answer(nil), a.answers...),
		Result:           a.result,
		LastError:        a.lastErr,
		StartedAt:        a.startedAt,
		FinishedAt:       a.finishedAt,
	}
}

// setAnswer overwrites the slot at pos.
func (a *Attempt) setAnswer(pos, option int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != AttemptInProgress {
		return ErrAttemptNotActive
	}
	if pos < 0 || pos >= len(a.answers) {
		return entities.ErrQuestionPosition
	}
	if !entities.ValidOptionIndex(option) || option >= len(a.test.Questions[pos].Options) {
		return entities.ErrOptionPosition
	}

	a.answers[pos] = entities.AnswerOf(option)
	return nil
}

// tick advances the countdown by one step. When the countdown reaches zero
// while in progress it moves the attempt into submitting and returns the
// answers to write.
func (a *Attempt) tick() ([]entities.Answer, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != AttemptInProgress && a.state != AttemptSubmitting {
		return nil, false
	}
	if a.remaining > 0 {
		a.remaining--
	}
	if a.remaining > 0 {
		return nil, false
	}

	a.expired = true
	if a.state == AttemptSubmitting {
		// A manual write is in flight; its outcome decides.
		return nil, false
	}

	a.state = AttemptSubmitting
	a.resume = AttemptExpired
	return append([]entities.Answer(nil), a.answers...), true
}

// beginSubmit is the single-fire guard: it moves the attempt into submitting
// and returns the answers to write, or explains why submission is refused.
func (a *Attempt) beginSubmit(trigger SubmitTrigger) ([]entities.Answer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case AttemptInProgress:
		if trigger == TriggerManual && entities.HasUnanswered(a.answers) {
			return nil, ErrUnansweredQuestions
		}
		a.resume = AttemptInProgress
	case AttemptExpired:
		a.resume = AttemptExpired
	case AttemptSubmitting, AttemptSubmitted:
		return nil, ErrAlreadySubmitted
	default:
		return nil, ErrAttemptClosed
	}

	a.state = AttemptSubmitting
	return append([]entities.Answer(nil), a.answers...), nil
}

// finishSubmit records the outcome of the write started by beginSubmit or tick.
func (a *Attempt) finishSubmit(res *entities.Result, err error, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		a.lastErr = err.Error()
		a.state = a.resume
		if a.state == AttemptInProgress && a.expired {
			a.state = AttemptExpired
		}
		if a.state == AttemptExpired {
			a.finishedAt = now
		}
		return
	}

	a.lastErr = ""
	a.result = res
	a.state = AttemptSubmitted
	a.finishedAt = now
}

// abandon closes an attempt that was never stored.
func (a *Attempt) abandon(now time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case AttemptInProgress, AttemptExpired:
		a.state = AttemptAbandoned
		a.finishedAt = now
		return nil
	case AttemptSubmitting:
		return ErrAlreadySubmitted
	default:
		return ErrAttemptClosed
	}
}

// finishedBefore reports whether the attempt is closed and idle since before cutoff.
func (a *Attempt) finishedBefore(cutoff time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case AttemptSubmitted, AttemptAbandoned, AttemptExpired:
		return !a.finishedAt.IsZero() && a.finishedAt.Before(cutoff)
	default:
		return false
	}
}

// stopTimer cancels the countdown. Safe to call any number of times.
func (a *Attempt) stopTimer() {
	a.stopOnce.Do(func() {
		a.ticker.Stop()
		close(a.done)
	})
}
