package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the capability level stored on a user record.
type Role string

const (
	RoleUser  Role = "user"  // default role, assigned on provisioning
	RoleAdmin Role = "admin" // elevated role, assigned out-of-band
)

// ParseRole maps a stored role to a known role. Anything unknown is a plain user.
func ParseRole(s string) Role {
	if Role(strings.TrimSpace(s)) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// IsAdmin reports whether the role carries the elevated capability.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is the directory record for an authenticated identity.
type User struct {
	ID            string    // opaque identity issued by the session provider
	Email         string    // lower-cased email address
	Role          Role      // "user" or "admin"
	PasswordHash  string    // bcrypt hash, empty for federated-only accounts
	GoogleSubject string    // Google "sub" claim, empty for password accounts
	CreatedAt     time.Time // set by the store
}

// NewUser creates a user record with a fresh identity and the default role.
func NewUser(email string) *User {
	return &User{
		ID:    uuid.NewString(),
		Email: NormalizeEmail(email),
		Role:  RoleUser,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Identity is the caller of an operation. It is handed to every flow explicitly.
type Identity struct {
	UserID string
	Email  string
}

// IsZero reports whether the identity is unauthenticated.
func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// FederatedIdentity holds the verified claims of an external identity token.
type FederatedIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
}
