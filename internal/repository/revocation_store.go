package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationPrefix = "session:revoked_before:"

// RevocationStore records, per identity, an instant before which refresh tokens are void.
type RevocationStore interface {
	RevokeBefore(ctx context.Context, identityID string, at time.Time, ttl time.Duration) error
	RevokedBefore(ctx context.Context, identityID string) (time.Time, bool, error)
}

type redisRevocationStore struct {
	client *redis.Client
}

// NewRevocationStore returns a Redis-backed store. With a nil client nothing is ever revoked.
func NewRevocationStore(client *redis.Client) RevocationStore {
	return &redisRevocationStore{client: client}
}

// RevokeBefore stores the instant in unix milliseconds and keeps the marker for ttl,
// which should be the refresh token lifetime.
func (s *redisRevocationStore) RevokeBefore(ctx context.Context, identityID string, at time.Time, ttl time.Duration) error {
	if s.client == nil {
		return nil
	}
	return s.client.Set(ctx, revocationPrefix+identityID, strconv.FormatInt(at.UnixMilli(), 10), ttl).Err()
}

func (s *redisRevocationStore) RevokedBefore(ctx context.Context, identityID string) (time.Time, bool, error) {
	if s.client == nil {
		return time.Time{}, false, nil
	}
	raw, err := s.client.Get(ctx, revocationPrefix+identityID).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(millis), true, nil
}
