package dto

import (
	"time"

	"github.com/pequemaths/pequemaths-api/internal/domain"
)

// ProfileUpdateRequest payload. Fields are left untyped so that non-string
// values can be told apart from missing ones.
type ProfileUpdateRequest struct {
	Name    any `json:"name"`
	Picture any `json:"picture"`
	UID     any `json:"uid"`
}

// RoleUpdateRequest payload for the admin role endpoint.
type RoleUpdateRequest struct {
	Role string `json:"role"`
}

// AccountResponse describes the caller's identity record.
type AccountResponse struct {
	UID         string      `json:"uid"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	PhotoURL    string      `json:"photoURL"`
	Role        domain.Role `json:"role"`
}

// NewAccountResponse maps an identity record and role.
func NewAccountResponse(account *domain.Account, role domain.Role) AccountResponse {
	return AccountResponse{
		UID:         account.UID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		PhotoURL:    account.PhotoURL,
		Role:        role,
	}
}

// UserProfileResponse describes a stored profile record.
type UserProfileResponse struct {
	UID         string      `json:"uid"`
	Email       string      `json:"email"`
	DisplayName *string     `json:"displayName"`
	Role        domain.Role `json:"role"`
	Name        *string     `json:"name,omitempty"`
	Picture     *string     `json:"picture,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   *time.Time  `json:"updatedAt"`
}

// NewUserProfileResponse maps a profile record.
func NewUserProfileResponse(p *domain.UserProfile) UserProfileResponse {
	return UserProfileResponse{
		UID:         p.UID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Role:        p.Role,
		Name:        p.Name,
		Picture:     p.Picture,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewUserProfileList maps a list of profile records.
func NewUserProfileList(profiles []*domain.UserProfile) []UserProfileResponse {
	out := make([]UserProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, NewUserProfileResponse(p))
	}
	return out
}
