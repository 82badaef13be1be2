package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"samaj-directory/internal/domain/directory"
)

const countsKey = "stats:counts"

// CountsCache keeps the directory totals shown on the dashboard.
type CountsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewCountsCache creates a Redis-backed counts cache.
func NewCountsCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *CountsCache {
	return &CountsCache{client: client, ttl: ttl, log: log}
}

// Get returns nil on a miss.
func (c *CountsCache) Get(ctx context.Context) (*directory.Counts, error) {
	data, err := c.client.Get(ctx, countsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get counts from cache", zap.Error(err))
		return nil, err
	}

	var counts directory.Counts
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, err
	}
	return &counts, nil
}

func (c *CountsCache) Set(ctx context.Context, counts directory.Counts) error {
	data, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, countsKey, data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set counts cache", zap.Error(err))
		return err
	}
	return nil
}

// Invalidate drops the cached totals so the next read recomputes them.
func (c *CountsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, countsKey).Err()
}
