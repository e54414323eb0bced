package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores computed week totals keyed by week and orders-version
type Cache interface {
	Get(ctx context.Context, weekID string, version int64) ([]UserTotal, bool, error)
	Set(ctx context.Context, weekID string, version int64, totals []UserTotal) error
}

// RedisCache keeps week totals in Redis. Every order write bumps the week's
// version, so stale entries are simply never read again and expire by TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a cache over client
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl, prefix: "ledger:week:"}
}

func (c *RedisCache) key(weekID string, version int64) string {
	return fmt.Sprintf("%s%s:v%d", c.prefix, weekID, version)
}

// Get returns the cached totals and whether they were present
func (c *RedisCache) Get(ctx context.Context, weekID string, version int64) ([]UserTotal, bool, error) {
	raw, err := c.client.Get(ctx, c.key(weekID, version)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read ledger cache: %w", err)
	}

	var totals []UserTotal
	if err := json.Unmarshal(raw, &totals); err != nil {
		return nil, false, fmt.Errorf("failed to decode ledger cache: %w", err)
	}
	return totals, true, nil
}

// Set stores totals under (weekID, version)
func (c *RedisCache) Set(ctx context.Context, weekID string, version int64, totals []UserTotal) error {
	raw, err := json.Marshal(totals)
	if err != nil {
		return fmt.Errorf("failed to encode ledger cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key(weekID, version), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write ledger cache: %w", err)
	}
	return nil
}
