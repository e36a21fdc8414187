package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidConfig    = errors.New("invalid rate limit configuration")
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)

// Config describes one bucket. Capacity is the burst size; RefillRate
// tokens are added every RefillInterval.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"20"`
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"20"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1m"`
}

func (c Config) validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	case c.RefillRate <= 0:
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	case c.RefillInterval <= 0:
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Store keeps bucket state. Take removes n tokens when enough are left and
// reports what would remain; a negative remainder means denied and nothing
// was taken.
type Store interface {
	Take(ctx context.Context, key string, n int, cfg Config) (remaining int, resetAt time.Time, err error)
}

type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func (r Result) Allowed() bool { return r.Remaining >= 0 }

// RetryAfter is zero for allowed results.
func (r Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

type Limiter struct {
	store  Store
	config Config
	prefix string
}

// New returns a Limiter that namespaces its keys with prefix.
func New(store Store, cfg Config, prefix string) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, config: cfg, prefix: prefix}, nil
}

func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	if l.prefix != "" {
		key = l.prefix + ":" + key
	}
	remaining, resetAt, err := l.store.Take(ctx, key, 1, l.config)
	if err != nil {
		return Result{}, err
	}
	return Result{Limit: l.config.Capacity, Remaining: remaining, ResetAt: resetAt}, nil
}
