package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

type fakeVerifier struct {
	claims entities.FederatedIdentity
	err    error
}

func (f *fakeVerifier) Verify(context.Context, string) (entities.FederatedIdentity, error) {
	return f.claims, f.err
}

type eventLog struct {
	mu    sync.Mutex
	kinds []IdentityEventKind
}

func (l *eventLog) record(ev IdentityEvent) {
	l.mu.Lock()
	l.kinds = append(l.kinds, ev.Kind)
	l.mu.Unlock()
}

func newSessionEnv(verifier FederatedVerifier) (*SessionService, *fakeUsers, *fakeClock) {
	users := newFakeUsers()
	clock := newFakeClock()
	s := NewSessionService(users, verifier, nil, SessionConfig{
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
		Issuer: "quizroom",
	}, clock, zap.NewNop())
	return s, users, clock
}

func TestSignUpSignInRoundTrip(t *testing.T) {
	s, users, _ := newSessionEnv(nil)
	ctx := context.Background()

	up, err := s.SignUp(ctx, "  Ada@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if up.Identity.Email != "ada@example.com" || up.Role != entities.RoleUser {
		t.Fatalf("unexpected session: %+v", up)
	}
	stored, _ := users.GetByID(ctx, up.Identity.UserID)
	if stored == nil || stored.PasswordHash == "" || stored.PasswordHash == "secret1" {
		t.Fatalf("password should be stored hashed: %+v", stored)
	}

	in, err := s.SignIn(ctx, "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	identity, err := s.Authenticate(ctx, in.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.UserID != up.Identity.UserID {
		t.Fatalf("unexpected identity: got=%q want=%q", identity.UserID, up.Identity.UserID)
	}
}

func TestSignUpRejectsBadInput(t *testing.T) {
	s, _, _ := newSessionEnv(nil)
	ctx := context.Background()

	if _, err := s.SignUp(ctx, "not-an-email", "secret1"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrInvalidEmail)
	}
	if _, err := s.SignUp(ctx, "ada@example.com", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrWeakPassword)
	}
	if _, err := s.SignUp(ctx, "ada@example.com", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := s.SignUp(ctx, "ADA@example.com", "secret2"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrEmailTaken)
	}
}

func TestSignInRejectsWrongCredentials(t *testing.T) {
	s, _, _ := newSessionEnv(nil)
	ctx := context.Background()
	_, _ = s.SignUp(ctx, "ada@example.com", "secret1")

	for _, tc := range []struct{ email, password string }{
		{"ada@example.com", "wrong-password"},
		{"nobody@example.com", "secret1"},
		{"garbage", "secret1"},
	} {
		if _, err := s.SignIn(ctx, tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("unexpected error for %s: got=%v want=%v", tc.email, err, ErrInvalidCredentials)
		}
	}
}

func TestSignOutRevokesToken(t *testing.T) {
	s, _, clock := newSessionEnv(nil)
	ctx := context.Background()

	sess, _ := s.SignUp(ctx, "ada@example.com", "secret1")
	if err := s.SignOut(ctx, sess.Token); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := s.Authenticate(ctx, sess.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrInvalidToken)
	}

	if n := s.PruneRevoked(clock.Now()); n != 0 {
		t.Fatalf("token has not expired yet: pruned=%d", n)
	}
	clock.Advance(2 * time.Hour)
	if n := s.PruneRevoked(clock.Now()); n != 1 {
		t.Fatalf("unexpected prune count: got=%d want=1", n)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	s, _, clock := newSessionEnv(nil)
	ctx := context.Background()

	sess, _ := s.SignUp(ctx, "ada@example.com", "secret1")

	parts := strings.Split(sess.Token, ".")
	if parts[2][0] == 'A' {
		parts[2] = "B" + parts[2][1:]
	} else {
		parts[2] = "A" + parts[2][1:]
	}
	tampered := strings.Join(parts, ".")

	other, _, _ := newSessionEnv(nil)
	other.cfg.Secret = []byte("another-secret")
	foreign, _ := other.SignUp(ctx, "bob@example.com", "secret1")

	for name, token := range map[string]string{
		"empty":    "",
		"garbage":  "not.a.jwt",
		"tampered": tampered,
		"foreign":  foreign.Token,
	} {
		if _, err := s.Authenticate(ctx, token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: unexpected error: got=%v want=%v", name, err, ErrInvalidToken)
		}
	}

	clock.Advance(2 * time.Hour)
	if _, err := s.Authenticate(ctx, sess.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired: unexpected error: got=%v want=%v", err, ErrInvalidToken)
	}
}

func TestSubscribersSeeIdentityChanges(t *testing.T) {
	s, _, _ := newSessionEnv(nil)
	ctx := context.Background()

	var log eventLog
	unsubscribe := s.Subscribe(log.record)

	sess, _ := s.SignUp(ctx, "ada@example.com", "secret1")
	_, _ = s.SignIn(ctx, "ada@example.com", "secret1")
	_ = s.SignOut(ctx, sess.Token)

	unsubscribe()
	_, _ = s.SignIn(ctx, "ada@example.com", "secret1")

	want := []IdentityEventKind{IdentitySignedUp, IdentitySignedIn, IdentitySignedOut}
	if len(log.kinds) != len(want) {
		t.Fatalf("unexpected events: got=%v want=%v", log.kinds, want)
	}
	for i := range want {
		if log.kinds[i] != want[i] {
			t.Fatalf("unexpected events: got=%v want=%v", log.kinds, want)
		}
	}
}

func TestSignInFederated(t *testing.T) {
	ctx := context.Background()

	disabled, _, _ := newSessionEnv(nil)
	if _, err := disabled.SignInFederated(ctx, "token"); !errors.Is(err, ErrFederatedDisabled) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrFederatedDisabled)
	}

	rejected, _, _ := newSessionEnv(&fakeVerifier{err: errors.New("bad audience")})
	if _, err := rejected.SignInFederated(ctx, "token"); !errors.Is(err, ErrFederatedToken) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrFederatedToken)
	}

	s, _, _ := newSessionEnv(&fakeVerifier{claims: entities.FederatedIdentity{
		Subject:       "google-123",
		Email:         "Ada@Example.com",
		EmailVerified: true,
	}})
	var log eventLog
	s.Subscribe(log.record)

	first, err := s.SignInFederated(ctx, "token")
	if err != nil {
		t.Fatalf("federated sign in: %v", err)
	}
	second, err := s.SignInFederated(ctx, "token")
	if err != nil {
		t.Fatalf("federated sign in: %v", err)
	}
	if first.Identity.UserID != second.Identity.UserID {
		t.Fatalf("second sign-in should reuse the record: %q != %q", first.Identity.UserID, second.Identity.UserID)
	}
	if !strings.EqualFold(first.Identity.Email, "ada@example.com") {
		t.Fatalf("unexpected email: %q", first.Identity.Email)
	}
	if len(log.kinds) != 2 || log.kinds[0] != IdentitySignedUp || log.kinds[1] != IdentitySignedIn {
		t.Fatalf("unexpected events: %v", log.kinds)
	}
}

func TestSignInFederatedRequiresVerifiedEmail(t *testing.T) {
	cases := map[string]entities.FederatedIdentity{
		"no email":    {Subject: "google-1", EmailVerified: true},
		"blank email": {Subject: "google-1", Email: "  ", EmailVerified: true},
		"unverified":  {Subject: "google-1", Email: "ada@example.com"},
		"no subject":  {Email: "ada@example.com", EmailVerified: true},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			s, users, _ := newSessionEnv(&fakeVerifier{claims: claims})

			if _, err := s.SignInFederated(context.Background(), "token"); !errors.Is(err, ErrFederatedToken) {
				t.Fatalf("unexpected error: got=%v want=%v", err, ErrFederatedToken)
			}
			if n := users.count(); n != 0 {
				t.Fatalf("no user should be provisioned: got=%d", n)
			}
		})
	}
}
