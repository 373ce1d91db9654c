package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
	"github.com/aliskhannn/quizroom/internal/infra/postgres"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrAccountLinked = errors.New("account is linked to another google identity")
	ErrMissingEmail  = errors.New("federated identity has no email")
)

const uniqueViolation = "23505"

const userColumns = `id, email, role, password_hash, COALESCE(google_subject, ''), created_at`

// UserRepository provides access to user records in the database.
type UserRepository struct {
	db postgres.DBTX
	tx *postgres.Transactor
}

// NewUserRepository creates a new UserRepository with the provided database handle.
// tx may be nil, in which case federated provisioning runs without a transaction.
func NewUserRepository(db postgres.DBTX, tx *postgres.Transactor) *UserRepository {
	return &UserRepository{db: db, tx: tx}
}

// Create inserts a new user record. The store assigns created_at.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (id, email, role, password_hash, google_subject)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING created_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		user.ID,
		user.Email,
		string(user.Role),
		user.PasswordHash,
		user.GoogleSubject,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by identity.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, entities.NormalizeEmail(email))
}

// GetByGoogleSubject retrieves a user linked to a Google account.
func (r *UserRepository) GetByGoogleSubject(ctx context.Context, subject string) (*entities.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE google_subject = $1`, subject)
}

// ProvisionFederated returns the user linked to candidate.GoogleSubject, linking an
// existing account with the same email or creating candidate when neither exists.
// An account already linked to a different subject is never re-linked, and a
// candidate without an email is never matched by email.
// The boolean result is true when a new record was created.
func (r *UserRepository) ProvisionFederated(ctx context.Context, candidate *entities.User) (*entities.User, bool, error) {
	if r.tx == nil {
		return r.provisionFederated(ctx, candidate)
	}

	var (
		user    *entities.User
		created bool
	)
	err := r.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		user, created, err = NewUserRepository(tx, nil).provisionFederated(ctx, candidate)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	return user, created, nil
}

func (r *UserRepository) provisionFederated(ctx context.Context, candidate *entities.User) (*entities.User, bool, error) {
	user, err := r.GetByGoogleSubject(ctx, candidate.GoogleSubject)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	if entities.NormalizeEmail(candidate.Email) == "" {
		return nil, false, ErrMissingEmail
	}

	user, err = r.GetByEmail(ctx, candidate.Email)
	switch {
	case err == nil:
		if user.GoogleSubject != "" && user.GoogleSubject != candidate.GoogleSubject {
			return nil, false, ErrAccountLinked
		}
		if _, err := r.db.Exec(ctx,
			`UPDATE users SET google_subject = $1 WHERE id = $2`,
			candidate.GoogleSubject, user.ID,
		); err != nil {
			return nil, false, fmt.Errorf("link google account: %w", err)
		}
		user.GoogleSubject = candidate.GoogleSubject
		return user, false, nil
	case !errors.Is(err, ErrUserNotFound):
		return nil, false, err
	}

	if err := r.Create(ctx, candidate); err != nil {
		return nil, false, err
	}

	return candidate, true, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entities.User, error) {
	var (
		user entities.User
		role string
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&role,
		&user.PasswordHash,
		&user.GoogleSubject,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.Role = entities.ParseRole(role)
	return &user, nil
}
