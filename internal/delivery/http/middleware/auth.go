package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aliskhannn/quizroom/internal/delivery/http/response"
	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

const (
	identityKey = "identity"
	tokenKey    = "session_token"

	// UserDashboardPath is where non-admin callers are sent from admin routes.
	UserDashboardPath = "/user-dashboard"
)

// Authenticator verifies session tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (entities.Identity, error)
}

// RoleResolver looks up the role of an identity.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (entities.Role, error)
}

type AuthMiddleware struct {
	auth   Authenticator
	roles  RoleResolver
	logger *zap.Logger
}

func NewAuthMiddleware(auth Authenticator, roles RoleResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, roles: roles, logger: logger.With(zap.String("middleware", "auth"))}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller identity on the context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", "")
			return
		}

		identity, err := am.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			am.logger.Debug("token rejected", zap.Error(err))
			response.AbortWithError(c, http.StatusUnauthorized, "unauthorized", err.Error(), "")
			return
		}

		c.Set(identityKey, identity)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth. A missing role record counts as a plain user.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			response.AbortWithError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", "")
			return
		}

		role, err := am.roles.ResolveRole(c.Request.Context(), identity.UserID)
		if err != nil {
			am.logger.Error("role lookup failed", zap.String("user_id", identity.UserID), zap.Error(err))
			response.AbortWithError(c, http.StatusInternalServerError, "internal_error", "role lookup failed", "")
			return
		}
		if !role.IsAdmin() {
			response.AbortWithError(c, http.StatusForbidden, "forbidden", "forbidden", UserDashboardPath)
			return
		}

		c.Next()
	}
}

// IdentityFrom returns the identity stored by RequireAuth.
func IdentityFrom(c *gin.Context) (entities.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return entities.Identity{}, false
	}
	identity, ok := v.(entities.Identity)
	return identity, ok && !identity.IsZero()
}

// TokenFrom returns the raw session token stored by RequireAuth.
func TokenFrom(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
