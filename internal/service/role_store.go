package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pequemaths/pequemaths-api/internal/domain"
	"github.com/pequemaths/pequemaths-api/internal/events"
	"github.com/pequemaths/pequemaths-api/internal/repository"
)

// RoleStore reads and writes the per-user role flag kept on profile records.
type RoleStore struct {
	profiles   repository.ProfileRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewRoleStore builds the store.
func NewRoleStore(profiles repository.ProfileRepository, dispatcher events.Dispatcher, logger *zap.Logger) *RoleStore {
	return &RoleStore{profiles: profiles, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// GetRole returns the stored role. A missing record or read failure yields
// false; callers treat that as usuario.
func (s *RoleStore) GetRole(ctx context.Context, uid string) (domain.Role, bool) {
	profile, err := s.profiles.GetByID(ctx, uid)
	if err != nil {
		if !errors.Is(err, repository.ErrProfileNotFound) {
			s.logger.Warn("role lookup failed", zap.String("uid", uid), zap.Error(err))
		}
		return "", false
	}
	return profile.Role, true
}

// IsAdmin reports whether uid holds the admin role.
func (s *RoleStore) IsAdmin(ctx context.Context, uid string) bool {
	role, ok := s.GetRole(ctx, uid)
	return ok && role == domain.RoleAdmin
}

// CreateProfile writes the default record for account unless one exists.
func (s *RoleStore) CreateProfile(ctx context.Context, account *domain.Account) (bool, error) {
	created, err := s.profiles.CreateIfAbsent(ctx, domain.NewDefaultProfile(account, s.now()))
	if err != nil {
		return false, err
	}
	if created {
		publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventProfileCreated, account.UID, account.UID, nil))
	}
	return created, nil
}

// UpdateRole changes the role of uid. It is the only write that sets updatedAt.
func (s *RoleStore) UpdateRole(ctx context.Context, actorUID, uid string, role domain.Role) (*domain.UserProfile, error) {
	current, err := s.profiles.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.UpdateRole(ctx, uid, role, s.now()); err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventRoleChanged, uid, actorUID,
		events.RoleChangedPayload{OldRole: current.Role, NewRole: role}))
	return s.profiles.GetByID(ctx, uid)
}

// GetProfile returns the full record for uid.
func (s *RoleStore) GetProfile(ctx context.Context, uid string) (*domain.UserProfile, error) {
	return s.profiles.GetByID(ctx, uid)
}

// ListProfiles returns every profile record ordered by uid.
func (s *RoleStore) ListProfiles(ctx context.Context) ([]*domain.UserProfile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// MirrorProfileFields copies editable profile fields into the record.
func (s *RoleStore) MirrorProfileFields(ctx context.Context, uid string, name, picture *string) error {
	return s.profiles.MergeFields(ctx, uid, name, picture)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
