package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
	"github.com/aliskhannn/quizroom/internal/infra/postgres"
)

const resultColumns = `id::text, user_id, test_id, test_title, score, total, answers, submitted_at`

// ResultRepository provides access to result records in the database.
type ResultRepository struct {
	db postgres.DBTX
}

// NewResultRepository creates a new ResultRepository with the provided database handle.
func NewResultRepository(db postgres.DBTX) *ResultRepository {
	return &ResultRepository{db: db}
}

// Create inserts a result record and writes the assigned id back into res.
func (r *ResultRepository) Create(ctx context.Context, res *entities.Result) error {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	query := `
		INSERT INTO results (user_id, test_id, test_title, score, total, answers, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text
	`

	err = r.db.QueryRow(
		ctx,
		query,
		res.UserID,
		res.TestID,
		res.TestTitle,
		res.Score,
		res.Total,
		answers,
		res.SubmittedAt,
	).Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("create result: %w", err)
	}

	return nil
}

// ListAll retrieves every result record, newest first.
func (r *ResultRepository) ListAll(ctx context.Context) ([]*entities.Result, error) {
	return r.list(ctx, `SELECT `+resultColumns+` FROM results ORDER BY submitted_at DESC`)
}

// ListByUser retrieves the result records of one identity, newest first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Result, error) {
	return r.list(ctx, `SELECT `+resultColumns+` FROM results WHERE user_id = $1 ORDER BY submitted_at DESC`, userID)
}

func (r *ResultRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Result, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []*entities.Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	return results, nil
}

func scanResult(row pgx.Row) (*entities.Result, error) {
	var (
		res     entities.Result
		answers []byte
	)
	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.TestID,
		&res.TestTitle,
		&res.Score,
		&res.Total,
		&answers,
		&res.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &res.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return &res, nil
}
