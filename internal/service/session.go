package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

const minPasswordLength = 6

// IdentityEventKind tells subscribers how the current identity changed.
type IdentityEventKind string

const (
	IdentitySignedUp  IdentityEventKind = "signed_up"
	IdentitySignedIn  IdentityEventKind = "signed_in"
	IdentitySignedOut IdentityEventKind = "signed_out"
)

// IdentityEvent is published on every sign-up, sign-in and sign-out.
type IdentityEvent struct {
	Kind     IdentityEventKind
	Identity entities.Identity
	At       time.Time
}

// Session is an issued session token with the identity it carries.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  entities.Identity
	Role      entities.Role
}

// SessionConfig holds token signing parameters.
type SessionConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SessionService is the session provider: credential and federated sign-in,
// sign-out, token verification and identity change notifications.
type SessionService struct {
	users    UserRepository
	verifier FederatedVerifier
	revoked  RevocationStore
	cfg      SessionConfig
	clock    Clock
	logger   *zap.Logger

	mu          sync.RWMutex
	subscribers map[int]func(IdentityEvent)
	nextSubID   int
}

// NewSessionService creates a session provider. verifier may be nil when
// federated sign-in is not configured; revoked defaults to an in-memory store.
func NewSessionService(
	users UserRepository,
	verifier FederatedVerifier,
	revoked RevocationStore,
	cfg SessionConfig,
	clock Clock,
	logger *zap.Logger,
) *SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if clock == nil {
		clock = SystemClock()
	}
	if revoked == nil {
		revoked = NewMemoryRevocations()
	}

	return &SessionService{
		users:       users,
		verifier:    verifier,
		revoked:     revoked,
		cfg:         cfg,
		clock:       clock,
		logger:      logger,
		subscribers: make(map[int]func(IdentityEvent)),
	}
}

// SignUp creates a password account with the default role and signs it in.
func (s *SessionService) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := entities.NewUser(email)
	user.PasswordHash = string(hash)

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return s.issue(user, IdentitySignedUp)
}

// SignIn checks an email/password pair.
func (s *SessionService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user, IdentitySignedIn)
}

// SignInFederated verifies a federated identity token and provisions a user
// record on first use.
func (s *SessionService) SignInFederated(ctx context.Context, idToken string) (*Session, error) {
	if s.verifier == nil {
		return nil, ErrFederatedDisabled
	}

	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		s.logger.Warn("federated token rejected", zap.Error(err))
		return nil, ErrFederatedToken
	}
	// Accounts are linked by email, so it must be present and verified.
	if claims.Subject == "" || entities.NormalizeEmail(claims.Email) == "" || !claims.EmailVerified {
		s.logger.Warn("federated token without a verified email", zap.String("subject", claims.Subject))
		return nil, ErrFederatedToken
	}

	candidate := entities.NewUser(claims.Email)
	candidate.GoogleSubject = claims.Subject

	user, created, err := s.users.ProvisionFederated(ctx, candidate)
	if err != nil {
		return nil, err
	}

	kind := IdentitySignedIn
	if created {
		kind = IdentitySignedUp
		s.logger.Info("federated user provisioned", zap.String("user_id", user.ID))
	}

	return s.issue(user, kind)
}

// SignOut revokes the token until it would have expired anyway.
func (s *SessionService) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}

	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	s.publish(IdentityEvent{
		Kind:     IdentitySignedOut,
		Identity: entities.Identity{UserID: claims.Subject, Email: claims.Email},
		At:       s.clock.Now(),
	})
	return nil
}

// Authenticate returns the identity carried by a valid, unrevoked token.
func (s *SessionService) Authenticate(ctx context.Context, token string) (entities.Identity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return entities.Identity{}, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return entities.Identity{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return entities.Identity{}, ErrInvalidToken
	}

	return entities.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// Subscribe registers fn for identity change notifications. The returned
// function removes the subscription.
func (s *SessionService) Subscribe(fn func(IdentityEvent)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// PruneRevoked forgets revocations of tokens that expired before now.
func (s *SessionService) PruneRevoked(now time.Time) int {
	return s.revoked.Prune(now)
}

func (s *SessionService) issue(user *entities.User, kind IdentityEventKind) (*Session, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.cfg.TTL)

	claims := sessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	identity := entities.Identity{UserID: user.ID, Email: user.Email}
	s.publish(IdentityEvent{Kind: kind, Identity: identity, At: now})

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Identity:  identity,
		Role:      user.Role,
	}, nil
}

func (s *SessionService) parse(token string) (*sessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	}, opts...)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}

func (s *SessionService) publish(ev IdentityEvent) {
	s.mu.RLock()
	subs := make([]func(IdentityEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func validateEmail(email string) (string, error) {
	email = entities.NormalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
