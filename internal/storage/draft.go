package storage

import (
	"sync"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

// DraftStorage provides in-memory storage for authoring drafts by user ID.
type DraftStorage struct {
	mu     sync.RWMutex
	drafts map[string]entities.TestDraft
}

// NewDraftStorage creates a new DraftStorage.
func NewDraftStorage() *DraftStorage {
	return &DraftStorage{
		drafts: make(map[string]entities.TestDraft),
	}
}

// Get retrieves the draft of a user.
func (s *DraftStorage) Get(userID string) (entities.TestDraft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[userID]
	if !ok {
		return entities.TestDraft{}, false
	}
	return d.Clone(), true
}

// Update replaces the draft of a user with the result of fn. A missing draft
// starts from entities.NewTestDraft. When fn fails the stored draft is kept
// and returned alongside the error.
func (s *DraftStorage) Update(userID string, fn func(entities.TestDraft) (entities.TestDraft, error)) (entities.TestDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.drafts[userID]
	if !ok {
		current = entities.NewTestDraft()
	}

	next, err := fn(current.Clone())
	if err != nil {
		return current.Clone(), err
	}

	s.drafts[userID] = next
	return next.Clone(), nil
}

// CompareAndDelete removes the draft of a user only while it still equals
// expected. It reports whether the draft was removed.
func (s *DraftStorage) CompareAndDelete(userID string, expected entities.TestDraft) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.drafts[userID]
	if !ok || !current.Equal(expected) {
		return false
	}
	delete(s.drafts, userID)
	return true
}

// Delete removes the draft of a user.
func (s *DraftStorage) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
}
