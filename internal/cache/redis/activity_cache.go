package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// defaultActivityTTL bounds staleness when an invalidation is missed.
const defaultActivityTTL = 5 * time.Minute

// ActivityCache implements domain.ActivityCache as JSON snapshots in Redis.
type ActivityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewActivityCache creates an ActivityCache backed by the given Client. A
// non-positive ttl falls back to the default.
func NewActivityCache(c *Client, ttl time.Duration) *ActivityCache {
	if ttl <= 0 {
		ttl = defaultActivityTTL
	}
	return &ActivityCache{rdb: c.Underlying(), ttl: ttl}
}

func activityKey(id uint64) string {
	return fmt.Sprintf("activity:%d", id)
}

// Get returns the cached snapshot of an activity. A miss is reported as
// domain.ErrNotFound.
func (c *ActivityCache) Get(ctx context.Context, id uint64) (domain.Activity, error) {
	data, err := c.rdb.Get(ctx, activityKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.Activity{}, domain.ErrNotFound
		}
		return domain.Activity{}, fmt.Errorf("redis: get activity %d: %w", id, err)
	}

	var a domain.Activity
	if err := json.Unmarshal(data, &a); err != nil {
		return domain.Activity{}, fmt.Errorf("redis: unmarshal activity %d: %w", id, err)
	}
	return a, nil
}

// Set stores a snapshot of the activity.
func (c *ActivityCache) Set(ctx context.Context, a domain.Activity) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("redis: marshal activity %d: %w", a.ID, err)
	}
	if err := c.rdb.Set(ctx, activityKey(a.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set activity %d: %w", a.ID, err)
	}
	return nil
}

// Invalidate drops the cached snapshot for an activity.
func (c *ActivityCache) Invalidate(ctx context.Context, id uint64) error {
	if err := c.rdb.Del(ctx, activityKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate activity %d: %w", id, err)
	}
	return nil
}
