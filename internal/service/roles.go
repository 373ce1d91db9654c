package service

import (
	"context"
	"errors"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

// RoleResolver looks up the effective role of an identity.
type RoleResolver struct {
	users UserLookup
}

func NewRoleResolver(users UserLookup) *RoleResolver {
	return &RoleResolver{users: users}
}

// ResolveRole returns the stored role, or RoleUser when no record exists.
func (r *RoleResolver) ResolveRole(ctx context.Context, userID string) (entities.Role, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return entities.RoleUser, nil
		}
		return entities.RoleUser, err
	}
	return user.Role, nil
}
