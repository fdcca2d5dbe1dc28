package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pequemaths/pequemaths-api/internal/domain"
)

// ErrProfileNotFound is returned when no profile record exists for a uid.
var ErrProfileNotFound = errors.New("profile not found")

const (
	profileKeyPrefix = "users:"

	fieldEmail       = "email"
	fieldDisplayName = "displayName"
	fieldRole        = "role"
	fieldCreatedAt   = "createdAt"
	fieldUpdatedAt   = "updatedAt"
	fieldName        = "name"
	fieldPicture     = "picture"
)

// createIfAbsentScript writes the record only when the key does not exist.
var createIfAbsentScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

// updateRoleScript refuses to create a record as a side effect of a role change.
var updateRoleScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('HSET', KEYS[1], 'role', ARGV[1], 'updatedAt', ARGV[2])
return 1
`)

// ProfileRepository defines access to user profile records.
type ProfileRepository interface {
	CreateIfAbsent(ctx context.Context, profile *domain.UserProfile) (bool, error)
	GetByID(ctx context.Context, uid string) (*domain.UserProfile, error)
	UpdateRole(ctx context.Context, uid string, role domain.Role, at time.Time) error
	MergeFields(ctx context.Context, uid string, name, picture *string) error
	List(ctx context.Context) ([]*domain.UserProfile, error)
}

type profileRepository struct {
	client redis.UniversalClient
}

// NewProfileRepository returns a Redis-backed implementation storing one hash per uid.
func NewProfileRepository(client redis.UniversalClient) ProfileRepository {
	return &profileRepository{client: client}
}

func profileKey(uid string) string {
	return profileKeyPrefix + uid
}

func (r *profileRepository) CreateIfAbsent(ctx context.Context, profile *domain.UserProfile) (bool, error) {
	if profile == nil || profile.UID == "" {
		return false, errors.New("profile uid required")
	}

	args := []any{
		fieldEmail, profile.Email,
		fieldRole, string(profile.Role),
		fieldCreatedAt, profile.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if profile.DisplayName != nil {
		args = append(args, fieldDisplayName, *profile.DisplayName)
	}

	created, err := createIfAbsentScript.Run(ctx, r.client, []string{profileKey(profile.UID)}, args...).Int()
	if err != nil {
		return false, fmt.Errorf("create profile: %w", err)
	}
	return created == 1, nil
}

func (r *profileRepository) GetByID(ctx context.Context, uid string) (*domain.UserProfile, error) {
	fields, err := r.client.HGetAll(ctx, profileKey(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrProfileNotFound
	}
	return decodeProfile(uid, fields), nil
}

func (r *profileRepository) UpdateRole(ctx context.Context, uid string, role domain.Role, at time.Time) error {
	updated, err := updateRoleScript.Run(ctx, r.client, []string{profileKey(uid)},
		string(role), at.UTC().Format(time.RFC3339Nano)).Int()
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if updated == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// MergeFields writes name and picture into the record, creating it if needed.
// A nil value clears the field.
func (r *profileRepository) MergeFields(ctx context.Context, uid string, name, picture *string) error {
	key := profileKey(uid)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for field, value := range map[string]*string{fieldName: name, fieldPicture: picture} {
			if value == nil {
				pipe.HDel(ctx, key, field)
				continue
			}
			pipe.HSet(ctx, key, field, *value)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("merge profile fields: %w", err)
	}
	return nil
}

func (r *profileRepository) List(ctx context.Context) ([]*domain.UserProfile, error) {
	var keys []string
	iter := r.client.ScanType(ctx, 0, profileKeyPrefix+"*", 100, "hash").Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan profiles: %w", err)
	}
	sort.Strings(keys)

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.HGetAll(ctx, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	profiles := make([]*domain.UserProfile, 0, len(keys))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		profiles = append(profiles, decodeProfile(strings.TrimPrefix(keys[i], profileKeyPrefix), fields))
	}
	return profiles, nil
}

// decodeProfile maps a stored hash onto the typed record. Unknown or missing
// roles become usuario and unparsable timestamps are dropped.
func decodeProfile(uid string, fields map[string]string) *domain.UserProfile {
	profile := &domain.UserProfile{
		UID:   uid,
		Email: fields[fieldEmail],
		Role:  domain.ParseRole(fields[fieldRole]),
	}
	if v, ok := fields[fieldDisplayName]; ok {
		profile.DisplayName = &v
	}
	if v, ok := fields[fieldName]; ok {
		profile.Name = &v
	}
	if v, ok := fields[fieldPicture]; ok {
		profile.Picture = &v
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt]); err == nil {
		profile.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields[fieldUpdatedAt]); err == nil {
		profile.UpdatedAt = &ts
	}
	return profile
}
