package google

import (
	"context"
	"errors"
	"fmt"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

var ErrMissingSubject = errors.New("id token has no subject")

// Verifier checks Google ID tokens against the configured OAuth client id.
type Verifier struct {
	clientID string
	verifier googleAuthIDTokenVerifier.Verifier
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID}
}

// Verify validates the token signature and audience and returns its identity claims.
func (v *Verifier) Verify(_ context.Context, idToken string) (entities.FederatedIdentity, error) {
	if err := v.verifier.VerifyIDToken(idToken, []string{v.clientID}); err != nil {
		return entities.FederatedIdentity{}, fmt.Errorf("verify id token: %w", err)
	}

	claims, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return entities.FederatedIdentity{}, fmt.Errorf("decode id token: %w", err)
	}
	if claims.Sub == "" {
		return entities.FederatedIdentity{}, ErrMissingSubject
	}

	return entities.FederatedIdentity{
		Subject:       claims.Sub,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}
