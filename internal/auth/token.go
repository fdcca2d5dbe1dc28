package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pequemaths/pequemaths-api/internal/domain"
)

// ErrInvalidSession is returned for session cookies that fail verification.
var ErrInvalidSession = errors.New("invalid session cookie")

// SessionTokenManager mints and verifies session cookies.
type SessionTokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewSessionTokenManager builds a new manager.
func NewSessionTokenManager(secret string) *SessionTokenManager {
	return &SessionTokenManager{secret: []byte(secret), now: time.Now}
}

// SessionClaims describes the session cookie payload.
type SessionClaims struct {
	Email    string           `json:"email,omitempty"`
	Name     string           `json:"name,omitempty"`
	Picture  string           `json:"picture,omitempty"`
	AuthTime *jwt.NumericDate `json:"auth_time,omitempty"`
	jwt.RegisteredClaims
}

// User returns the identity carried by the claims.
func (c *SessionClaims) User() *domain.SessionUser {
	return &domain.SessionUser{
		UID:     c.Subject,
		Email:   c.Email,
		Name:    c.Name,
		Picture: c.Picture,
	}
}

// Mint builds and signs a session cookie from verified ID token claims.
func (tm *SessionTokenManager) Mint(id *domain.IDTokenClaims, ttl time.Duration) (*domain.Session, error) {
	if id == nil || id.UID == "" {
		return nil, errors.New("session subject required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}

	issuedAt := tm.now()
	expiresAt := issuedAt.Add(ttl)
	sessionID := uuid.NewString()

	claims := &SessionClaims{
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   id.UID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}
	if !id.AuthTime.IsZero() {
		claims.AuthTime = jwt.NewNumericDate(id.AuthTime)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		ID:        sessionID,
		UID:       id.UID,
		Token:     tokenString,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Parse validates signature and expiry and returns the claims.
func (tm *SessionTokenManager) Parse(tokenStr string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
