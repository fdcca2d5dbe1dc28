package domain

import "time"

// Account is the canonical identity record owned by the identity directory.
type Account struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccountUpdate carries optional identity fields; nil means "leave as is".
type AccountUpdate struct {
	DisplayName *string
	PhotoURL    *string
}

// IDTokenClaims is the verified content of a client supplied identity token.
type IDTokenClaims struct {
	UID      string
	Email    string
	Name     string
	Picture  string
	AuthTime time.Time
	Expiry   time.Time
}

// SessionUser is the identity recovered from a verified session cookie.
type SessionUser struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Session describes a minted session artifact.
type Session struct {
	ID        string
	UID       string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
