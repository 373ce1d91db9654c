package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically forgets finished attempts and expired token revocations.
type Sweeper struct {
	taking    *TakingService
	sessions  *SessionService
	clock     Clock
	schedule  string
	retention time.Duration
	logger    *zap.Logger
}

func NewSweeper(
	taking *TakingService,
	sessions *SessionService,
	clock Clock,
	schedule string,
	retention time.Duration,
	logger *zap.Logger,
) *Sweeper {
	if clock == nil {
		clock = SystemClock()
	}
	return &Sweeper{
		taking:    taking,
		sessions:  sessions,
		clock:     clock,
		schedule:  schedule,
		retention: retention,
		logger:    logger,
	}
}

// Start runs the schedule until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	if _, err := c.AddFunc(s.schedule, s.Sweep); err != nil {
		return fmt.Errorf("add sweep job: %w", err)
	}

	c.Start()
	s.logger.Info("sweeper started", zap.String("schedule", s.schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("sweeper stopped")
	return nil
}

// Sweep runs one housekeeping pass.
func (s *Sweeper) Sweep() {
	now := s.clock.Now()

	attempts := s.taking.Purge(now.Add(-s.retention))
	tokens := s.sessions.PruneRevoked(now)

	s.logger.Debug("sweep finished",
		zap.Int("attempts_purged", attempts),
		zap.Int("revocations_pruned", tokens),
	)
}
