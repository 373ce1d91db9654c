package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.stopped.Store(true) }

// fire delivers one tick. It reports false when nobody is listening any more.
func (t *fakeTicker) fire() bool {
	select {
	case t.ch <- time.Time{}:
		return true
	case <-time.After(time.Second):
		return false
	}
}

func (t *fakeTicker) fireN(tb testing.TB, n int) {
	tb.Helper()
	for i := 0; i < n; i++ {
		if !t.fire() {
			tb.Fatalf("tick %d was not received", i+1)
		}
	}
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	t := &fakeTicker{ch: make(chan time.Time)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

func (c *fakeClock) ticker(i int) *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[i]
}

type fakeTests struct {
	mu      sync.Mutex
	tests   map[string]*entities.TestDefinition
	err     error
	created []*entities.TestDefinition
	// onCreate runs before the write, outside the lock.
	onCreate func()
}

func newFakeTests(tests ...*entities.TestDefinition) *fakeTests {
	f := &fakeTests{tests: make(map[string]*entities.TestDefinition)}
	for _, t := range tests {
		f.tests[t.ID] = t
	}
	return f
}

func (f *fakeTests) Create(_ context.Context, t *entities.TestDefinition) error {
	if f.onCreate != nil {
		f.onCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	t.ID = fmt.Sprintf("t%d", len(f.created)+1)
	f.created = append(f.created, t)
	f.tests[t.ID] = t
	return nil
}

func (f *fakeTests) GetByID(_ context.Context, id string) (*entities.TestDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tests[id]
	if !ok {
		return nil, ErrTestNotFound
	}
	return t, nil
}

func (f *fakeTests) List(context.Context) ([]*entities.TestDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entities.TestDefinition, 0, len(f.tests))
	for _, t := range f.tests {
		out = append(out, t)
	}
	return out, nil
}

type fakeResults struct {
	mu      sync.Mutex
	created []*entities.Result
	err     error

	// When set, Create signals entered and waits for release.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeResults) Create(ctx context.Context, res *entities.Result) error {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	res.ID = fmt.Sprintf("r%d", len(f.created)+1)
	f.created = append(f.created, res)
	return nil
}

func (f *fakeResults) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeResults) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *fakeResults) ListAll(context.Context) ([]*entities.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entities.Result(nil), f.created...), f.err
}

func (f *fakeResults) ListByUser(_ context.Context, userID string) ([]*entities.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Result
	for _, r := range f.created {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, f.err
}

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]*entities.User
	errByID map[string]error
}

func newFakeUsers(users ...*entities.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[string]*entities.User), errByID: make(map[string]error)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *entities.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errByID[id]; err != nil {
		return nil, err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeUsers) ProvisionFederated(_ context.Context, candidate *entities.User) (*entities.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.GoogleSubject == candidate.GoogleSubject {
			return u, false, nil
		}
	}
	f.byID[candidate.ID] = candidate
	return candidate, true, nil
}

func (f *fakeUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeNotifier struct {
	mu      sync.Mutex
	calls   []*entities.Result
	ctxErrs []error
	err     error
	// block, when set, holds every call until it is closed.
	block chan struct{}
}

func (f *fakeNotifier) NotifyResult(ctx context.Context, res *entities.Result, _ entities.Identity) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, res)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func capitals() *entities.TestDefinition {
	return &entities.TestDefinition{
		ID:              "capitals",
		Title:           "Capitals",
		DurationMinutes: 1,
		Questions: []entities.Question{
			{Text: "Capital of France?", Options: []string{"Berlin", "Madrid", "Paris", "Rome"}, CorrectAnswerIndex: 2},
		},
	}
}

func twoQuestions() *entities.TestDefinition {
	t := capitals()
	t.ID = "two"
	t.Questions = append(t.Questions, entities.Question{
		Text: "Capital of Italy?", Options: []string{"Rome", "Milan", "Turin", "Naples"}, CorrectAnswerIndex: 0,
	})
	return t
}
