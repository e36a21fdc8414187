package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper remembers processed webhook event IDs. It only saves work:
// transitions are idempotent, so a lost mark costs a replay, nothing more.
type Deduper interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

type NoopDeduper struct{}

func (NoopDeduper) Seen(context.Context, string) (bool, error) { return false, nil }
func (NoopDeduper) Mark(context.Context, string) error         { return nil }

type RedisDeduper struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisDeduper(client redis.UniversalClient, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

func (d *RedisDeduper) Seen(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe lookup: %w", err)
	}
	return n > 0, nil
}

func (d *RedisDeduper) Mark(ctx context.Context, key string) error {
	if err := d.client.Set(ctx, key, 1, d.ttl).Err(); err != nil {
		return fmt.Errorf("dedupe mark: %w", err)
	}
	return nil
}

func dedupeKey(provider, eventID string) string {
	return "shipfeed:webhook:" + provider + ":" + eventID
}
