package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedSessionPrefix = "session:revoked:"

// RevocationRepository keeps a deny-list of logged-out session IDs.
type RevocationRepository interface {
	Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type revocationRepository struct {
	client redis.UniversalClient
}

// NewRevocationRepository returns a Redis-backed deny-list. Entries expire
// together with the session they revoke.
func NewRevocationRepository(client redis.UniversalClient) RevocationRepository {
	return &revocationRepository{client: client}
}

func (r *revocationRepository) Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if sessionID == "" || ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedSessionPrefix+sessionID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *revocationRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, revokedSessionPrefix+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}
