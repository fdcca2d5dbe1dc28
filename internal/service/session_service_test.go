package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pequemaths/pequemaths-api/internal/config"
	"github.com/pequemaths/pequemaths-api/internal/domain"
	"github.com/pequemaths/pequemaths-api/internal/events"
)

type sessionFixture struct {
	identity   *fakeIdentity
	profiles   *memoryProfiles
	dispatcher *recordingDispatcher
	svc        *SessionService
}

func newSessionFixture() *sessionFixture {
	identity := newFakeIdentity()
	identity.tokens["valid-U1"] = &domain.IDTokenClaims{UID: "U1", Email: "ana@example.com", Name: "Ana"}
	profiles := newMemoryProfiles()
	dispatcher := &recordingDispatcher{}

	svc := NewSessionService(config.SessionConfig{CookieName: "__session", MaxAgeSecond: 8 * 60 * 60}, SessionDependencies{
		Identity:   identity,
		Roles:      NewRoleStore(profiles, dispatcher, testLogger()),
		Dispatcher: dispatcher,
		Logger:     testLogger(),
	})
	return &sessionFixture{identity: identity, profiles: profiles, dispatcher: dispatcher, svc: svc}
}

func TestIssueSession_FirstLoginRemembered(t *testing.T) {
	f := newSessionFixture()

	issued, err := f.svc.IssueSession(context.Background(), "valid-U1", true)
	require.NoError(t, err)

	assert.True(t, issued.ProfileCreated)
	assert.Equal(t, 8*time.Hour, issued.MaxAge)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), issued.Session.ExpiresAt, 5*time.Second)

	profile := f.profiles.records["U1"]
	require.NotNil(t, profile)
	assert.Equal(t, domain.RoleUsuario, profile.Role)
	assert.Equal(t, "ana@example.com", profile.Email)
	assert.Nil(t, profile.UpdatedAt)

	claims, err := f.identity.VerifySessionCookie(context.Background(), issued.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, "U1", claims.Subject)

	assert.Equal(t, []events.EventType{events.EventProfileCreated, events.EventSessionIssued}, f.dispatcher.types())
}

func TestIssueSession_ShortSession(t *testing.T) {
	f := newSessionFixture()

	issued, err := f.svc.IssueSession(context.Background(), "valid-U1", false)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, issued.MaxAge)
}

func TestIssueSession_Idempotent(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	first, err := f.svc.IssueSession(ctx, "valid-U1", false)
	require.NoError(t, err)
	f.profiles.put(&domain.UserProfile{UID: "U1", Role: domain.RoleAdmin})

	second, err := f.svc.IssueSession(ctx, "valid-U1", false)
	require.NoError(t, err)

	assert.False(t, second.ProfileCreated)
	assert.Len(t, f.profiles.records, 1)
	assert.Equal(t, domain.RoleAdmin, f.profiles.records["U1"].Role, "existing record must not be overwritten")
	assert.NotEqual(t, first.Session.ID, second.Session.ID)

	_, err = f.identity.VerifySessionCookie(ctx, second.Session.Token)
	assert.NoError(t, err)
}

func TestIssueSession_Rejections(t *testing.T) {
	f := newSessionFixture()

	_, err := f.svc.IssueSession(context.Background(), "  ", true)
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = f.svc.IssueSession(context.Background(), "forged", true)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NotErrorIs(t, err, ErrMissingToken)

	assert.Empty(t, f.profiles.records)
}

func TestRevokeSession(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	issued, err := f.svc.IssueSession(ctx, "valid-U1", true)
	require.NoError(t, err)

	require.NoError(t, f.svc.RevokeSession(ctx, issued.Session.Token))
	_, err = f.identity.VerifySessionCookie(ctx, issued.Session.Token)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	assert.NoError(t, f.svc.RevokeSession(ctx, ""))
	assert.NoError(t, f.svc.RevokeSession(ctx, "garbage"))
}
