// Package redis provides the Redis-backed cache repository
package redis

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheRepository implements outbound.CacheRepository on a Redis client
type CacheRepository struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    *zap.Logger
}

// NewCacheRepository creates a new cache repository. Every key is stored
// under keyPrefix so several deployments can share one Redis.
func NewCacheRepository(client redis.UniversalClient, keyPrefix string, logger *zap.Logger) *CacheRepository {
	return &CacheRepository{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger.Named("redis-cache"),
	}
}

// Get retrieves a value; a missing key is outbound.ErrCacheMiss
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, outbound.ErrCacheMiss
	}
	if err != nil {
		r.logger.Debug("Cache get failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return data, nil
}

// Set stores a value with TTL; ttl <= 0 keeps it until deleted
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.keyPrefix+key, value, ttl).Err(); err != nil {
		r.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Delete removes a value from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.keyPrefix+key).Err(); err != nil {
		r.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.keyPrefix+key).Result()
	if err != nil {
		r.logger.Error("Cache exists check failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return n > 0, nil
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)
