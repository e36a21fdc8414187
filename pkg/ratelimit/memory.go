package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore keeps buckets in process. Buckets idle for an hour are swept
// by a background goroutine until Close is called.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time

	sweepEvery time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

type MemoryOption func(*MemoryStore)

// WithSweepInterval sets how often idle buckets are dropped. Zero disables
// the sweeper.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.sweepEvery = d }
}

func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		buckets:    make(map[string]*bucket),
		now:        time.Now,
		sweepEvery: 5 * time.Minute,
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sweepEvery > 0 {
		go s.sweep()
	}
	return s
}

func (s *MemoryStore) Take(_ context.Context, key string, n int, cfg Config) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tokens: cfg.Capacity, lastRefill: now}
		s.buckets[key] = b
	}
	b.lastAccess = now

	if intervals := int(now.Sub(b.lastRefill) / cfg.RefillInterval); intervals > 0 {
		// advance by whole intervals only so partial progress carries over
		b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * cfg.RefillInterval)
		// cap the multiplication so long idle periods cannot overflow
		intervals = min(intervals, cfg.Capacity/cfg.RefillRate+1)
		b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
	}

	remaining := b.tokens - n
	if remaining >= 0 {
		b.tokens = remaining
	}
	return remaining, b.lastRefill.Add(cfg.RefillInterval), nil
}

func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := s.now()
			for key, b := range s.buckets {
				if now.Sub(b.lastAccess) > time.Hour {
					delete(s.buckets, key)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}
