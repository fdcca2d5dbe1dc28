package service

import (
	"context"
	"errors"

	"github.com/pequemaths/pequemaths-api/internal/domain"
)

var (
	// ErrNotAuthenticated is returned when a mutation has no session user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrForbidden is returned when a non-admin targets another uid.
	ErrForbidden = errors.New("forbidden")
)

// AdminChecker answers whether a uid holds the admin role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, uid string) bool
}

// AuthorizationGate decides which uid a mutation applies to.
type AuthorizationGate struct {
	roles AdminChecker
}

// NewAuthorizationGate builds the gate.
func NewAuthorizationGate(roles AdminChecker) *AuthorizationGate {
	return &AuthorizationGate{roles: roles}
}

// EffectiveTarget returns the caller's own uid when requested is empty or
// equal to it, without consulting roles. Any other target needs admin.
func (g *AuthorizationGate) EffectiveTarget(ctx context.Context, caller *domain.SessionUser, requested string) (string, error) {
	if caller == nil || caller.UID == "" {
		return "", ErrNotAuthenticated
	}
	if requested == "" || requested == caller.UID {
		return caller.UID, nil
	}
	if !g.roles.IsAdmin(ctx, caller.UID) {
		return "", ErrForbidden
	}
	return requested, nil
}
