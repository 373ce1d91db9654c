package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
	"github.com/aliskhannn/quizroom/internal/infra/postgres"
)

var ErrTestNotFound = errors.New("test not found")

const testColumns = `id::text, title, duration_minutes, questions, created_by, created_at`

// TestRepository provides access to test definitions in the database.
type TestRepository struct {
	db postgres.DBTX
}

// NewTestRepository creates a new TestRepository with the provided database handle.
func NewTestRepository(db postgres.DBTX) *TestRepository {
	return &TestRepository{db: db}
}

// Create stores a test definition. The store assigns id and created_at,
// both written back into t.
func (r *TestRepository) Create(ctx context.Context, t *entities.TestDefinition) error {
	questions, err := json.Marshal(t.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}

	query := `
		INSERT INTO tests (title, duration_minutes, questions, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at
	`

	if err := r.db.QueryRow(ctx, query, t.Title, t.DurationMinutes, questions, t.CreatedBy).
		Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("create test: %w", err)
	}

	return nil
}

// GetByID retrieves a test definition. Malformed ids resolve to ErrTestNotFound.
func (r *TestRepository) GetByID(ctx context.Context, id string) (*entities.TestDefinition, error) {
	query := `SELECT ` + testColumns + ` FROM tests WHERE id::text = $1`

	t, err := scanTest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}

	return t, nil
}

// List retrieves every test definition, newest first.
func (r *TestRepository) List(ctx context.Context) ([]*entities.TestDefinition, error) {
	query := `SELECT ` + testColumns + ` FROM tests ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	defer rows.Close()

	var tests []*entities.TestDefinition
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan test: %w", err)
		}
		tests = append(tests, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}

	return tests, nil
}

func scanTest(row pgx.Row) (*entities.TestDefinition, error) {
	var (
		t         entities.TestDefinition
		questions []byte
	)
	if err := row.Scan(&t.ID, &t.Title, &t.DurationMinutes, &questions, &t.CreatedBy, &t.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &t.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return &t, nil
}
