package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

// TakingConfig holds test-taking parameters.
type TakingConfig struct {
	TickInterval time.Duration // one countdown step, one second in production
	WriteTimeout time.Duration // deadline of timer-triggered writes
}

// TakingService runs timed test attempts and stores their results.
type TakingService struct {
	tests    TestRepository
	results  ResultRepository
	notifier ResultNotifier
	clock    Clock
	cfg      TakingConfig
	logger   *zap.Logger

	mu       sync.RWMutex
	attempts map[string]*Attempt
	wg       sync.WaitGroup
}

// NewTakingService creates a TakingService. notifier may be nil.
func NewTakingService(
	tests TestRepository,
	results ResultRepository,
	notifier ResultNotifier,
	clock Clock,
	cfg TakingConfig,
	logger *zap.Logger,
) *TakingService {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if clock == nil {
		clock = SystemClock()
	}

	return &TakingService{
		tests:    tests,
		results:  results,
		notifier: notifier,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
		attempts: make(map[string]*Attempt),
	}
}

// Start loads the test and begins a new attempt with its countdown running.
func (s *TakingService) Start(ctx context.Context, taker entities.Identity, testID string) (AttemptSnapshot, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return AttemptSnapshot{}, err
	}

	a := newAttempt(uuid.NewString(), taker, test, s.clock.NewTicker(s.cfg.TickInterval), s.clock.Now())

	s.mu.Lock()
	s.attempts[a.id] = a
	s.mu.Unlock()

	s.wg.Add(1)
	go s.countdown(a)

	s.logger.Info("attempt started",
		zap.String("attempt_id", a.id),
		zap.String("test_id", test.ID),
		zap.String("user_id", taker.UserID),
		zap.Int("seconds", test.DurationSeconds()),
	)

	return a.Snapshot(), nil
}

// Status returns the attempt as seen by its owner.
func (s *TakingService) Status(taker entities.Identity, attemptID string) (AttemptSnapshot, error) {
	a, err := s.get(taker, attemptID)
	if err != nil {
		return AttemptSnapshot{}, err
	}
	return a.Snapshot(), nil
}

// Answer sets or overwrites the answer at pos.
func (s *TakingService) Answer(taker entities.Identity, attemptID string, pos, option int) (AttemptSnapshot, error) {
	a, err := s.get(taker, attemptID)
	if err != nil {
		return AttemptSnapshot{}, err
	}
	if err := a.setAnswer(pos, option); err != nil {
		return AttemptSnapshot{}, err
	}
	return a.Snapshot(), nil
}

// Submit stores the result of a manual submission. While the countdown runs
// every question must be answered; after expiry the stored answers are
// submitted as they are.
func (s *TakingService) Submit(ctx context.Context, taker entities.Identity, attemptID string) (AttemptSnapshot, error) {
	a, err := s.get(taker, attemptID)
	if err != nil {
		return AttemptSnapshot{}, err
	}

	answers, err := a.beginSubmit(TriggerManual)
	if err != nil {
		return AttemptSnapshot{}, err
	}

	if err := s.persist(ctx, a, answers, TriggerManual); err != nil {
		return a.Snapshot(), err
	}
	return a.Snapshot(), nil
}

// Abandon cancels the countdown without storing anything.
func (s *TakingService) Abandon(taker entities.Identity, attemptID string) error {
	a, err := s.get(taker, attemptID)
	if err != nil {
		return err
	}
	if err := a.abandon(s.clock.Now()); err != nil {
		return err
	}
	a.stopTimer()

	s.logger.Info("attempt abandoned", zap.String("attempt_id", a.id))
	return nil
}

// Purge forgets closed attempts finished before cutoff.
func (s *TakingService) Purge(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, a := range s.attempts {
		if a.finishedBefore(cutoff) {
			a.stopTimer()
			delete(s.attempts, id)
			purged++
		}
	}
	return purged
}

// Shutdown abandons running attempts and waits for their countdowns to exit.
func (s *TakingService) Shutdown() {
	s.mu.RLock()
	attempts := make([]*Attempt, 0, len(s.attempts))
	for _, a := range s.attempts {
		attempts = append(attempts, a)
	}
	s.mu.RUnlock()

	now := s.clock.Now()
	for _, a := range attempts {
		_ = a.abandon(now)
		a.stopTimer()
	}
	s.wg.Wait()
}

func (s *TakingService) get(taker entities.Identity, attemptID string) (*Attempt, error) {
	s.mu.RLock()
	a, ok := s.attempts[attemptID]
	s.mu.RUnlock()

	if !ok || a.identity.UserID != taker.UserID {
		return nil, ErrAttemptNotFound
	}
	return a, nil
}

func (s *TakingService) countdown(a *Attempt) {
	defer s.wg.Done()

	for {
		select {
		case <-a.done:
			return
		case <-a.ticker.C():
			answers, fire := a.tick()
			if !fire {
				continue
			}

			a.stopTimer()
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
			if err := s.persist(ctx, a, answers, TriggerTimer); err != nil {
				s.logger.Error("automatic submission failed",
					zap.String("attempt_id", a.id),
					zap.Error(err),
				)
			}
			cancel()
			return
		}
	}
}

// persist writes the result for answers. The attempt must be in submitting.
func (s *TakingService) persist(ctx context.Context, a *Attempt, answers []entities.Answer, trigger SubmitTrigger) error {
	err := s.write(ctx, a, answers)
	now := s.clock.Now()

	if err != nil {
		a.finishSubmit(nil, err, now)
		if a.Snapshot().State != AttemptInProgress {
			a.stopTimer()
		}
		return err
	}

	res := a.Snapshot().Result
	s.logger.Info("attempt submitted",
		zap.String("attempt_id", a.id),
		zap.String("result_id", res.ID),
		zap.String("trigger", string(trigger)),
		zap.Int("score", res.Score),
		zap.Int("total", res.Total),
	)

	if s.notifier != nil {
		s.wg.Add(1)
		go s.notify(res, a.identity)
	}
	return nil
}

// notify announces a stored result without holding up the submitter.
func (s *TakingService) notify(res *entities.Result, taker entities.Identity) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	if err := s.notifier.NotifyResult(ctx, res, taker); err != nil {
		s.logger.Warn("result notification failed",
			zap.String("result_id", res.ID),
			zap.Error(err),
		)
	}
}

func (s *TakingService) write(ctx context.Context, a *Attempt, answers []entities.Answer) error {
	res := entities.NewResult(a.identity.UserID, a.test, answers, s.clock.Now())
	if err := s.results.Create(ctx, res); err != nil {
		return fmt.Errorf("%w: store result: %w", ErrStoreWrite, err)
	}

	a.finishSubmit(res, nil, s.clock.Now())
	a.stopTimer()
	return nil
}

// IsAttemptConflict reports errors caused by the attempt's state rather than the caller's input.
func IsAttemptConflict(err error) bool {
	return errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrAttemptNotActive) ||
		errors.Is(err, ErrAttemptClosed) ||
		errors.Is(err, ErrUnansweredQuestions)
}
