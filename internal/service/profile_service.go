package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pequemaths/pequemaths-api/internal/domain"
	"github.com/pequemaths/pequemaths-api/internal/events"
)

// ProfileUpdateInput is a validated profile mutation. Nil fields mean "no change".
type ProfileUpdateInput struct {
	Name      *string
	Picture   *string
	TargetUID string
}

// NewProfileUpdateInput normalizes loosely typed request fields. Values that
// are not strings, or are blank after trimming, are dropped.
func NewProfileUpdateInput(name, picture, uid any) ProfileUpdateInput {
	in := ProfileUpdateInput{
		Name:    trimmedString(name),
		Picture: trimmedString(picture),
	}
	if target := trimmedString(uid); target != nil {
		in.TargetUID = *target
	}
	return in
}

func trimmedString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ProfileUpdateResult reports what happened to each backing store.
type ProfileUpdateResult struct {
	TargetUID string
	// MirrorErr is the swallowed profile-record write failure, if any.
	MirrorErr error
}

// ProfileService applies profile edits.
type ProfileService struct {
	identity   IdentityProvider
	roles      *RoleStore
	gate       *AuthorizationGate
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ProfileDependencies encapsulates requirements for the profile service.
type ProfileDependencies struct {
	Identity   IdentityProvider
	Roles      *RoleStore
	Gate       *AuthorizationGate
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewProfileService builds the service.
func NewProfileService(deps ProfileDependencies) *ProfileService {
	return &ProfileService{
		identity:   deps.Identity,
		roles:      deps.Roles,
		gate:       deps.Gate,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// UpdateProfile writes name and picture for the effective target. The
// identity directory write is authoritative; the profile-record mirror is
// best effort and its failure is only logged.
func (s *ProfileService) UpdateProfile(ctx context.Context, caller *domain.SessionUser, in ProfileUpdateInput) (*ProfileUpdateResult, error) {
	if caller == nil {
		return nil, ErrNotAuthenticated
	}

	target, err := s.gate.EffectiveTarget(ctx, caller, in.TargetUID)
	if err != nil {
		return nil, err
	}

	if err := s.identity.UpdateUser(ctx, target, domain.AccountUpdate{
		DisplayName: in.Name,
		PhotoURL:    in.Picture,
	}); err != nil {
		return nil, fmt.Errorf("update identity %s: %w", target, err)
	}

	result := &ProfileUpdateResult{TargetUID: target}
	if err := s.roles.MirrorProfileFields(ctx, target, in.Name, in.Picture); err != nil {
		s.logger.Warn("profile record write failed",
			zap.String("uid", target),
			zap.Error(err))
		result.MirrorErr = err
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventProfileUpdated, target, caller.UID,
		events.ProfileUpdatedPayload{
			NameChanged:    in.Name != nil,
			PictureChanged: in.Picture != nil,
			MirrorFailed:   result.MirrorErr != nil,
		}))
	return result, nil
}

// CurrentAccount returns the identity record and role of uid.
func (s *ProfileService) CurrentAccount(ctx context.Context, uid string) (*domain.Account, domain.Role, error) {
	account, err := s.identity.GetUser(ctx, uid)
	if err != nil {
		return nil, "", err
	}
	role, ok := s.roles.GetRole(ctx, uid)
	if !ok {
		role = domain.RoleUsuario
	}
	return account, role, nil
}
