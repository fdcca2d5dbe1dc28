package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pequemaths/pequemaths-api/internal/domain"
)

func TestAuthorizationGate_SelfTargetSkipsRoleStore(t *testing.T) {
	profiles := newMemoryProfiles()
	gate := NewAuthorizationGate(NewRoleStore(profiles, nil, testLogger()))
	caller := &domain.SessionUser{UID: "U1"}

	for _, requested := range []string{"", "U1"} {
		target, err := gate.EffectiveTarget(context.Background(), caller, requested)
		require.NoError(t, err)
		assert.Equal(t, "U1", target)
	}
	assert.Zero(t, profiles.gets, "role store must not be consulted")
}

func TestAuthorizationGate_OtherTarget(t *testing.T) {
	profiles := newMemoryProfiles()
	profiles.put(&domain.UserProfile{UID: "A1", Role: domain.RoleAdmin})
	profiles.put(&domain.UserProfile{UID: "U1", Role: domain.RoleUsuario})
	gate := NewAuthorizationGate(NewRoleStore(profiles, nil, testLogger()))
	ctx := context.Background()

	target, err := gate.EffectiveTarget(ctx, &domain.SessionUser{UID: "A1"}, "U2")
	require.NoError(t, err)
	assert.Equal(t, "U2", target)

	_, err = gate.EffectiveTarget(ctx, &domain.SessionUser{UID: "U1"}, "U2")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = gate.EffectiveTarget(ctx, &domain.SessionUser{UID: "nobody"}, "U2")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizationGate_RequiresCaller(t *testing.T) {
	gate := NewAuthorizationGate(NewRoleStore(newMemoryProfiles(), nil, testLogger()))

	_, err := gate.EffectiveTarget(context.Background(), nil, "U2")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
