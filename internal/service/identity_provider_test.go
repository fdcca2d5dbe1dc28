package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pequemaths/pequemaths-api/internal/auth"
	"github.com/pequemaths/pequemaths-api/internal/domain"
	"github.com/pequemaths/pequemaths-api/internal/repository"
)

type memoryAccounts struct {
	records map[string]*domain.Account
	creates int
}

func (m *memoryAccounts) CreateIfAbsent(_ context.Context, a *domain.Account) error {
	m.creates++
	if _, ok := m.records[a.UID]; !ok {
		cp := *a
		m.records[a.UID] = &cp
	}
	return nil
}

func (m *memoryAccounts) Update(_ context.Context, uid string, update domain.AccountUpdate) error {
	a, ok := m.records[uid]
	if !ok {
		return repository.ErrAccountNotFound
	}
	if update.DisplayName != nil {
		a.DisplayName = *update.DisplayName
	}
	if update.PhotoURL != nil {
		a.PhotoURL = *update.PhotoURL
	}
	return nil
}

func (m *memoryAccounts) GetByID(_ context.Context, uid string) (*domain.Account, error) {
	a, ok := m.records[uid]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

type memoryRevocations struct {
	revoked map[string]time.Time
	err     error
}

func (m *memoryRevocations) Revoke(_ context.Context, id string, expiresAt time.Time) error {
	m.revoked[id] = expiresAt
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[id]
	return ok, nil
}

type staticVerifier map[string]*domain.IDTokenClaims

func (v staticVerifier) Verify(_ context.Context, raw string) (*domain.IDTokenClaims, error) {
	claims, ok := v[raw]
	if !ok {
		return nil, auth.ErrInvalidIDToken
	}
	return claims, nil
}

func newTestIdentityProvider() (IdentityProvider, *memoryAccounts, *memoryRevocations) {
	accounts := &memoryAccounts{records: map[string]*domain.Account{}}
	revocations := &memoryRevocations{revoked: map[string]time.Time{}}
	provider := NewIdentityProvider(IdentityDependencies{
		Verifier:    staticVerifier{"tok": {UID: "U1", Email: "ana@example.com", Name: "Ana"}},
		Tokens:      auth.NewSessionTokenManager("test-secret"),
		Accounts:    accounts,
		Revocations: revocations,
	})
	return provider, accounts, revocations
}

func TestIdentityProvider_EnsureUserSeedsOnce(t *testing.T) {
	provider, accounts, _ := newTestIdentityProvider()
	ctx := context.Background()

	claims, err := provider.VerifyIDToken(ctx, "tok")
	require.NoError(t, err)

	account, err := provider.EnsureUser(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, "Ana", account.DisplayName)

	name := "Ana Maria"
	require.NoError(t, provider.UpdateUser(ctx, "U1", domain.AccountUpdate{DisplayName: &name}))

	account, err = provider.EnsureUser(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", account.DisplayName, "existing account keeps its edits")
	assert.Equal(t, 1, accounts.creates)

	_, err = provider.VerifyIDToken(ctx, "other")
	assert.ErrorIs(t, err, auth.ErrInvalidIDToken)
}

func TestIdentityProvider_SessionLifecycle(t *testing.T) {
	provider, _, revocations := newTestIdentityProvider()
	ctx := context.Background()

	sess, err := provider.CreateSessionCookie(&domain.IDTokenClaims{UID: "U1", Email: "ana@example.com"}, time.Hour)
	require.NoError(t, err)

	claims, err := provider.VerifySessionCookie(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, claims.ID)

	require.NoError(t, provider.RevokeSession(ctx, claims))
	assert.Contains(t, revocations.revoked, sess.ID)

	_, err = provider.VerifySessionCookie(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestIdentityProvider_RevocationLookupFailureRejects(t *testing.T) {
	provider, _, revocations := newTestIdentityProvider()
	revocations.err = errStoreDown

	sess, err := provider.CreateSessionCookie(&domain.IDTokenClaims{UID: "U1"}, time.Hour)
	require.NoError(t, err)

	_, err = provider.VerifySessionCookie(context.Background(), sess.Token)
	assert.ErrorIs(t, err, errStoreDown)
}
