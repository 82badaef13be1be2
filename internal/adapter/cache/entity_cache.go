package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Keyed is implemented by every cacheable entity.
type Keyed interface {
	Key() string
}

// EntityCache defines caching operations for one collection.
type EntityCache[T Keyed] interface {
	// Get retrieves an item by ID.
	// Returns nil if the item is not cached.
	Get(ctx context.Context, id string) (*T, error)

	// Set stores an item with the configured TTL.
	Set(ctx context.Context, item T) error

	// Delete removes an item by ID.
	Delete(ctx context.Context, id string) error

	// DeleteMultiple removes several items by ID.
	DeleteMultiple(ctx context.Context, ids ...string) error
}

// RedisEntityCache implements EntityCache using Redis as the backing store.
type RedisEntityCache[T Keyed] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisEntityCache creates a Redis-backed cache whose keys are
// "<collection>:<id>".
func NewRedisEntityCache[T Keyed](client *redis.Client, collection string, ttl time.Duration, log *zap.Logger) *RedisEntityCache[T] {
	return &RedisEntityCache[T]{
		client: client,
		prefix: collection,
		ttl:    ttl,
		log:    log.With(zap.String("collection", collection)),
	}
}

func (c *RedisEntityCache[T]) cacheKey(id string) string {
	return fmt.Sprintf("%s:%s", c.prefix, id)
}

// Get retrieves an item from Redis.
func (c *RedisEntityCache[T]) Get(ctx context.Context, id string) (*T, error) {
	data, err := c.client.Get(ctx, c.cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.String("id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		c.log.Error("failed to unmarshal cached item", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.String("id", id))
	return &item, nil
}

// Set stores an item in Redis with TTL.
func (c *RedisEntityCache[T]) Set(ctx context.Context, item T) error {
	id := item.Key()
	if id == "" {
		return fmt.Errorf("cannot cache %s item without id", c.prefix)
	}

	data, err := json.Marshal(item)
	if err != nil {
		c.log.Error("failed to marshal item for cache", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, c.cacheKey(id), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("id", id), zap.Error(err))
		return err
	}

	c.log.Debug("cached item", zap.String("id", id), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes an item from Redis.
func (c *RedisEntityCache[T]) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.String("id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.String("id", id))
	return nil
}

// DeleteMultiple removes several items from Redis.
func (c *RedisEntityCache[T]) DeleteMultiple(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.cacheKey(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("failed to delete multiple from cache", zap.Int("count", len(ids)), zap.Error(err))
		return err
	}

	c.log.Debug("deleted multiple from cache", zap.Int("count", len(ids)))
	return nil
}
