package handlers

import (
	"context"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
	"github.com/aliskhannn/quizroom/internal/service"
)

// SessionProvider signs callers in and out.
type SessionProvider interface {
	SignUp(ctx context.Context, email, password string) (*service.Session, error)
	SignIn(ctx context.Context, email, password string) (*service.Session, error)
	SignInFederated(ctx context.Context, idToken string) (*service.Session, error)
	SignOut(ctx context.Context, token string) error
}

// RoleResolver looks up the role of an identity.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (entities.Role, error)
}

// TestCatalog lists and loads test definitions.
type TestCatalog interface {
	List(ctx context.Context) ([]service.TestSummary, error)
	Get(ctx context.Context, id string) (*entities.TestDefinition, error)
}

// AttemptRunner drives timed attempts.
type AttemptRunner interface {
	Start(ctx context.Context, taker entities.Identity, testID string) (service.AttemptSnapshot, error)
	Status(taker entities.Identity, attemptID string) (service.AttemptSnapshot, error)
	Answer(taker entities.Identity, attemptID string, pos, option int) (service.AttemptSnapshot, error)
	Submit(ctx context.Context, taker entities.Identity, attemptID string) (service.AttemptSnapshot, error)
	Abandon(taker entities.Identity, attemptID string) error
}

// ResultsReader renders stored results.
type ResultsReader interface {
	List(ctx context.Context, caller entities.Identity) (*service.ResultsView, error)
	Dashboard(ctx context.Context, caller entities.Identity) ([]service.DashboardPoint, error)
}

// DraftEditor edits and submits the caller's test draft.
type DraftEditor interface {
	Draft(author entities.Identity) entities.TestDraft
	Update(author entities.Identity, u service.DraftUpdate) entities.TestDraft
	AppendQuestion(author entities.Identity) entities.TestDraft
	UpdateQuestion(author entities.Identity, pos int, p entities.QuestionPatch) (entities.TestDraft, error)
	Reset(author entities.Identity) entities.TestDraft
	Submit(ctx context.Context, author entities.Identity) (*entities.TestDefinition, error)
}

// DraftAssistant fills a draft with generated questions.
type DraftAssistant interface {
	Generate(ctx context.Context, author entities.Identity, req service.DraftRequest) (entities.TestDraft, error)
}
