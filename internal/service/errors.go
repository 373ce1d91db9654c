package service

import (
	"errors"

	"github.com/aliskhannn/quizroom/internal/infra/postgres/repository"
)

var (
	ErrTestNotFound  = repository.ErrTestNotFound
	ErrUserNotFound  = repository.ErrUserNotFound
	ErrEmailTaken    = repository.ErrEmailTaken
	ErrAccountLinked = repository.ErrAccountLinked

	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrInvalidToken        = errors.New("invalid or expired session token")
	ErrFederatedDisabled   = errors.New("federated sign-in is not configured")
	ErrFederatedToken      = errors.New("invalid federated identity token")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrAttemptNotActive    = errors.New("attempt is not in progress")
	ErrAttemptClosed       = errors.New("attempt is closed")
	ErrAlreadySubmitted    = errors.New("attempt already submitted")
	ErrUnansweredQuestions = errors.New("all questions must be answered before submitting")
	ErrInvalidDraftRequest = errors.New("invalid question draft request")
	ErrMissingAPIKey       = errors.New("API key is required to generate questions")
	ErrGenerationFailed    = errors.New("question generation failed")
	ErrEmptyDraftBatch     = errors.New("invalid response format: expected a non-empty array of questions")
	ErrStoreWrite          = errors.New("failed to save")
)
