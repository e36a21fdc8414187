package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript runs the same refill arithmetic as MemoryStore atomically on
// the server. Times are unix milliseconds.
var takeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local n = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'refill')
local tokens = tonumber(state[1])
local refill = tonumber(state[2])
if tokens == nil or refill == nil then
  tokens = capacity
  refill = now
end

local intervals = math.floor((now - refill) / interval)
if intervals > 0 then
  refill = refill + intervals * interval
  intervals = math.min(intervals, math.floor(capacity / rate) + 1)
  tokens = math.min(tokens + intervals * rate, capacity)
end

local remaining = tokens - n
if remaining >= 0 then
  tokens = remaining
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'refill', refill)
redis.call('PEXPIRE', KEYS[1], interval * (math.floor(capacity / rate) + 1))
return {remaining, refill + interval}
`)

// RedisStore shares buckets between API replicas.
type RedisStore struct {
	client redis.Scripter
	now    func() time.Time
}

func NewRedisStore(client redis.Scripter) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Take(ctx context.Context, key string, n int, cfg Config) (int, time.Time, error) {
	vals, err := takeScript.Run(ctx, s.client, []string{"ratelimit:" + key},
		cfg.Capacity,
		cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(),
		s.now().UnixMilli(),
		n,
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(vals) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: unexpected script reply %v", ErrStoreUnavailable, vals)
	}
	return int(vals[0]), time.UnixMilli(vals[1]), nil
}
