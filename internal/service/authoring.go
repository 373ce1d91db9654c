package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

// DraftUpdate changes the test-level fields of a draft. Nil fields are left as is.
type DraftUpdate struct {
	Title           *string
	DurationMinutes *int
}

// AuthoringService keeps one test draft per author and persists it on submit.
type AuthoringService struct {
	drafts DraftStorage
	tests  TestRepository
	clock  Clock
	logger *zap.Logger
}

func NewAuthoringService(drafts DraftStorage, tests TestRepository, clock Clock, logger *zap.Logger) *AuthoringService {
	if clock == nil {
		clock = SystemClock()
	}
	return &AuthoringService{drafts: drafts, tests: tests, clock: clock, logger: logger}
}

// Draft returns the author's current draft, or a fresh one.
func (s *AuthoringService) Draft(author entities.Identity) entities.TestDraft {
	if d, ok := s.drafts.Get(author.UserID); ok {
		return d
	}
	return entities.NewTestDraft()
}

// Update applies test-level changes.
func (s *AuthoringService) Update(author entities.Identity, u DraftUpdate) entities.TestDraft {
	d, _ := s.drafts.Update(author.UserID, func(d entities.TestDraft) (entities.TestDraft, error) {
		if u.Title != nil {
			d = d.WithTitle(*u.Title)
		}
		if u.DurationMinutes != nil {
			d = d.WithDuration(*u.DurationMinutes)
		}
		return d, nil
	})
	return d
}

// AppendQuestion adds a blank question at the end.
func (s *AuthoringService) AppendQuestion(author entities.Identity) entities.TestDraft {
	d, _ := s.drafts.Update(author.UserID, func(d entities.TestDraft) (entities.TestDraft, error) {
		return d.AppendQuestion(), nil
	})
	return d
}

// UpdateQuestion patches the question at pos.
func (s *AuthoringService) UpdateQuestion(author entities.Identity, pos int, p entities.QuestionPatch) (entities.TestDraft, error) {
	return s.drafts.Update(author.UserID, func(d entities.TestDraft) (entities.TestDraft, error) {
		return d.UpdateQuestion(pos, p)
	})
}

// ReplaceQuestions swaps the whole question list.
func (s *AuthoringService) ReplaceQuestions(author entities.Identity, qs []entities.Question) entities.TestDraft {
	d, _ := s.drafts.Update(author.UserID, func(d entities.TestDraft) (entities.TestDraft, error) {
		return d.WithQuestions(qs), nil
	})
	return d
}

// Reset discards the draft.
func (s *AuthoringService) Reset(author entities.Identity) entities.TestDraft {
	s.drafts.Delete(author.UserID)
	return entities.NewTestDraft()
}

// Submit validates and stores the draft. On success the draft is reset; on
// failure it is left intact and the error is returned.
func (s *AuthoringService) Submit(ctx context.Context, author entities.Identity) (*entities.TestDefinition, error) {
	draft := s.Draft(author)
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	def := draft.Definition(author.UserID, s.clock.Now())
	if err := s.tests.Create(ctx, def); err != nil {
		s.logger.Error("failed to store test",
			zap.String("author", author.UserID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}

	// Edits made while the test was being stored are kept.
	if !s.drafts.CompareAndDelete(author.UserID, draft) {
		s.logger.Info("draft changed during submit, keeping it", zap.String("author", author.UserID))
	}
	s.logger.Info("test created",
		zap.String("test_id", def.ID),
		zap.String("author", author.UserID),
		zap.Int("questions", def.QuestionCount()),
	)

	return def, nil
}
