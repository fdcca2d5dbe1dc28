package domain

import (
	"strings"
	"time"
)

// Role is the authorization flag stored on a user profile record.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUsuario Role = "usuario"
)

// ParseRole maps any stored value onto a known role. Anything that is not
// literally "admin" is a regular user.
func ParseRole(raw string) Role {
	if raw == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUsuario
}

// ParseRoleStrict validates caller supplied roles.
func ParseRoleStrict(raw string) (Role, bool) {
	switch Role(strings.TrimSpace(raw)) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUsuario:
		return RoleUsuario, true
	default:
		return "", false
	}
}

// UserProfile is the document-store record keyed by uid.
type UserProfile struct {
	UID         string
	Email       string
	DisplayName *string
	Role        Role
	Name        *string
	Picture     *string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// NewDefaultProfile builds the record created on a uid's first session.
func NewDefaultProfile(account *Account, now time.Time) *UserProfile {
	profile := &UserProfile{
		UID:       account.UID,
		Email:     account.Email,
		Role:      RoleUsuario,
		CreatedAt: now,
	}
	if account.DisplayName != "" {
		name := account.DisplayName
		profile.DisplayName = &name
	}
	return profile
}
