package service

import (
	"context"
	"time"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

// UserRepository is the users kind of the directory store.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	ProvisionFederated(ctx context.Context, candidate *entities.User) (*entities.User, bool, error)
}

// UserLookup resolves identities to user records.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*entities.User, error)
}

// TestRepository is the tests kind of the directory store.
type TestRepository interface {
	Create(ctx context.Context, t *entities.TestDefinition) error
	GetByID(ctx context.Context, id string) (*entities.TestDefinition, error)
	List(ctx context.Context) ([]*entities.TestDefinition, error)
}

// ResultRepository is the results kind of the directory store.
type ResultRepository interface {
	Create(ctx context.Context, res *entities.Result) error
	ListAll(ctx context.Context) ([]*entities.Result, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.Result, error)
}

// DraftStorage keeps one authoring draft per identity.
type DraftStorage interface {
	Get(userID string) (entities.TestDraft, bool)
	Update(userID string, fn func(entities.TestDraft) (entities.TestDraft, error)) (entities.TestDraft, error)
	CompareAndDelete(userID string, expected entities.TestDraft) bool
	Delete(userID string)
}

// FederatedVerifier checks an identity token issued by an external provider.
type FederatedVerifier interface {
	Verify(ctx context.Context, idToken string) (entities.FederatedIdentity, error)
}

// TextGenerator sends one prompt to a text-generation endpoint and returns the reply text.
type TextGenerator interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// RevocationStore remembers signed-out session tokens until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Prune(now time.Time) int
}

// ResultNotifier announces stored results.
type ResultNotifier interface {
	NotifyResult(ctx context.Context, res *entities.Result, taker entities.Identity) error
}

// Clock abstracts time for the countdown.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of *time.Ticker used by attempts.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}
