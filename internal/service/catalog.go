package service

import (
	"context"
	"time"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

// TestSummary is the list view of a test definition.
type TestSummary struct {
	ID              string
	Title           string
	DurationMinutes int
	QuestionCount   int
	CreatedAt       time.Time
}

// CatalogService lists available tests.
type CatalogService struct {
	tests TestRepository
}

func NewCatalogService(tests TestRepository) *CatalogService {
	return &CatalogService{tests: tests}
}

// List returns every test as a summary.
func (s *CatalogService) List(ctx context.Context) ([]TestSummary, error) {
	tests, err := s.tests.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TestSummary, 0, len(tests))
	for _, t := range tests {
		out = append(out, TestSummary{
			ID:              t.ID,
			Title:           t.Title,
			DurationMinutes: t.DurationMinutes,
			QuestionCount:   t.QuestionCount(),
			CreatedAt:       t.CreatedAt,
		})
	}
	return out, nil
}

// Get returns one test definition.
func (s *CatalogService) Get(ctx context.Context, id string) (*entities.TestDefinition, error) {
	return s.tests.GetByID(ctx, id)
}
