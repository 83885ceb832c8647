package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-fixture-service/internal/domain/user"
)

// DefaultKeyPrefix namespaces cached records.
const DefaultKeyPrefix = "user"

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by ID.
	// Returns nil, nil on a cache miss.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error
}

// RedisUserCache implements UserCache using Redis as the backing store.
// Keys are scoped to a store generation so records cached for one store are
// never served for another store sharing the same Redis.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache for the store
// identified by generation.
func NewRedisUserCache(client *redis.Client, generation string, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	prefix := DefaultKeyPrefix
	if generation != "" {
		prefix += ":" + generation
	}
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		prefix: prefix,
		log:    log,
	}
}

// Key returns the Redis key holding the record for id.
func (c *RedisUserCache) Key(id int64) string {
	return fmt.Sprintf("%s:%d", c.prefix, id)
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	data, err := c.client.Get(ctx, c.Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return &user, nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}

	data, err := json.Marshal(user)
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, c.Key(user.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}
