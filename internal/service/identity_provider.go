package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pequemaths/pequemaths-api/internal/auth"
	"github.com/pequemaths/pequemaths-api/internal/domain"
	"github.com/pequemaths/pequemaths-api/internal/repository"
)

// ErrSessionRevoked is returned for session cookies that were logged out.
var ErrSessionRevoked = errors.New("session revoked")

// IDTokenVerifier verifies client identity tokens.
type IDTokenVerifier interface {
	Verify(ctx context.Context, raw string) (*domain.IDTokenClaims, error)
}

// IdentityProvider is everything the services need from the identity side:
// token verification, the canonical account record, and session cookies.
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, raw string) (*domain.IDTokenClaims, error)
	EnsureUser(ctx context.Context, claims *domain.IDTokenClaims) (*domain.Account, error)
	GetUser(ctx context.Context, uid string) (*domain.Account, error)
	UpdateUser(ctx context.Context, uid string, update domain.AccountUpdate) error
	CreateSessionCookie(claims *domain.IDTokenClaims, ttl time.Duration) (*domain.Session, error)
	VerifySessionCookie(ctx context.Context, cookie string) (*auth.SessionClaims, error)
	RevokeSession(ctx context.Context, claims *auth.SessionClaims) error
}

type identityProvider struct {
	verifier    IDTokenVerifier
	tokens      *auth.SessionTokenManager
	accounts    repository.AccountRepository
	revocations repository.RevocationRepository
}

// IdentityDependencies encapsulates requirements for the identity provider.
type IdentityDependencies struct {
	Verifier    IDTokenVerifier
	Tokens      *auth.SessionTokenManager
	Accounts    repository.AccountRepository
	Revocations repository.RevocationRepository
}

// NewIdentityProvider builds the provider.
func NewIdentityProvider(deps IdentityDependencies) IdentityProvider {
	return &identityProvider{
		verifier:    deps.Verifier,
		tokens:      deps.Tokens,
		accounts:    deps.Accounts,
		revocations: deps.Revocations,
	}
}

func (p *identityProvider) VerifyIDToken(ctx context.Context, raw string) (*domain.IDTokenClaims, error) {
	return p.verifier.Verify(ctx, raw)
}

// EnsureUser returns the account for the token subject, seeding it from the
// token claims the first time the uid is seen.
func (p *identityProvider) EnsureUser(ctx context.Context, claims *domain.IDTokenClaims) (*domain.Account, error) {
	account, err := p.accounts.GetByID(ctx, claims.UID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("get account: %w", err)
	}

	if err := p.accounts.CreateIfAbsent(ctx, &domain.Account{
		UID:         claims.UID,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
	}); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return p.accounts.GetByID(ctx, claims.UID)
}

func (p *identityProvider) GetUser(ctx context.Context, uid string) (*domain.Account, error) {
	return p.accounts.GetByID(ctx, uid)
}

func (p *identityProvider) UpdateUser(ctx context.Context, uid string, update domain.AccountUpdate) error {
	return p.accounts.Update(ctx, uid, update)
}

func (p *identityProvider) CreateSessionCookie(claims *domain.IDTokenClaims, ttl time.Duration) (*domain.Session, error) {
	return p.tokens.Mint(claims, ttl)
}

func (p *identityProvider) VerifySessionCookie(ctx context.Context, cookie string) (*auth.SessionClaims, error) {
	claims, err := p.tokens.Parse(cookie)
	if err != nil {
		return nil, err
	}
	revoked, err := p.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

func (p *identityProvider) RevokeSession(ctx context.Context, claims *auth.SessionClaims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return p.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
