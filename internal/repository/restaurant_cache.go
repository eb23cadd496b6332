package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/restaurant-portal/internal/domain"
)

const (
	restaurantCachePrefix   = "restaurant:status:"
	restaurantVersionPrefix = "restaurant:status_version:"
)

var errStaleRead = errors.New("restaurant changed while it was being read")

// CachedRestaurantRepository is a read-through Redis cache in front of a
// RestaurantRepository. Every write goes to the inner repository, then bumps the
// record's version and evicts the key in one MULTI. A fill only lands if the version is
// unchanged since before the inner read, so a read racing a transition cannot put the
// old status back. Redis failures fall back to the inner repository.
type CachedRestaurantRepository struct {
	RestaurantRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedRestaurantRepository wraps inner. A nil client or non-positive ttl disables caching.
func NewCachedRestaurantRepository(inner RestaurantRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRestaurantRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRestaurantRepository{RestaurantRepository: inner, client: client, ttl: ttl, logger: logger}
}

type cachedRestaurant struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	VerificationStatus string    `json:"verification_status"`
	AccountStatus      string    `json:"account_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (r *CachedRestaurantRepository) enabled() bool {
	return r.client != nil && r.ttl > 0
}

// GetByID serves from Redis when possible.
func (r *CachedRestaurantRepository) GetByID(ctx context.Context, id string) (*domain.RestaurantAccount, error) {
	if !r.enabled() {
		return r.RestaurantRepository.GetByID(ctx, id)
	}

	raw, err := r.client.Get(ctx, restaurantCachePrefix+id).Bytes()
	switch {
	case err == nil:
		var cached cachedRestaurant
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return &domain.RestaurantAccount{
				ID:                 cached.ID,
				Name:               cached.Name,
				VerificationStatus: domain.ParseVerificationStatus(cached.VerificationStatus),
				AccountStatus:      domain.ParseAccountStatus(cached.AccountStatus),
				CreatedAt:          cached.CreatedAt,
				UpdatedAt:          cached.UpdatedAt,
			}, nil
		}
		r.logger.Warn("discarding undecodable cache entry", zap.String("restaurant_id", id))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("restaurant cache read failed", zap.String("restaurant_id", id), zap.Error(err))
	}

	version, err := r.client.Get(ctx, restaurantVersionPrefix+id).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Warn("restaurant cache version read failed", zap.String("restaurant_id", id), zap.Error(err))
		return r.RestaurantRepository.GetByID(ctx, id)
	}

	account, err := r.RestaurantRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, account, version)
	return account, nil
}

// TransitionVerification writes through and evicts the cached record.
func (r *CachedRestaurantRepository) TransitionVerification(ctx context.Context, id string, from, to domain.VerificationStatus) (*domain.RestaurantAccount, error) {
	account, err := r.RestaurantRepository.TransitionVerification(ctx, id, from, to)
	r.Invalidate(ctx, id)
	return account, err
}

// TransitionAccount writes through and evicts the cached record.
func (r *CachedRestaurantRepository) TransitionAccount(ctx context.Context, id string, from, to domain.AccountStatus) (*domain.RestaurantAccount, error) {
	account, err := r.RestaurantRepository.TransitionAccount(ctx, id, from, to)
	r.Invalidate(ctx, id)
	return account, err
}

// Invalidate drops the cached record for id and voids any fill still in flight.
func (r *CachedRestaurantRepository) Invalidate(ctx context.Context, id string) {
	if !r.enabled() {
		return
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, restaurantVersionPrefix+id)
		pipe.Del(ctx, restaurantCachePrefix+id)
		return nil
	})
	if err != nil {
		r.logger.Warn("restaurant cache eviction failed", zap.String("restaurant_id", id), zap.Error(err))
	}
}

// store writes the record unless its version moved past the one read before the fill.
func (r *CachedRestaurantRepository) store(ctx context.Context, account *domain.RestaurantAccount, version int64) {
	payload, err := json.Marshal(cachedRestaurant{
		ID:                 account.ID,
		Name:               account.Name,
		VerificationStatus: string(account.VerificationStatus),
		AccountStatus:      string(account.AccountStatus),
		CreatedAt:          account.CreatedAt,
		UpdatedAt:          account.UpdatedAt,
	})
	if err != nil {
		return
	}

	versionKey := restaurantVersionPrefix + account.ID
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, restaurantCachePrefix+account.ID, payload, r.ttl)
			return nil
		})
		return err
	}, versionKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleRead), errors.Is(err, redis.TxFailedErr):
		r.logger.Debug("skipping stale restaurant cache fill", zap.String("restaurant_id", account.ID))
	default:
		r.logger.Warn("restaurant cache write failed", zap.String("restaurant_id", account.ID), zap.Error(err))
	}
}
