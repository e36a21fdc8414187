package ratelimit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipfeed/shipfeed/pkg/ratelimit"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	for _, cfg := range []ratelimit.Config{
		{Capacity: 0, RefillRate: 1, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 0, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 1},
	} {
		_, err := ratelimit.New(ratelimit.NewMemoryStore(ratelimit.WithSweepInterval(0)), cfg, "")
		assert.ErrorIs(t, err, ratelimit.ErrInvalidConfig)
	}
}

func TestMemoryStore_Refill(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := ratelimit.NewMemoryStore(ratelimit.WithSweepInterval(0), ratelimit.WithClock(c.Now))
	l, err := ratelimit.New(store, ratelimit.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Minute}, "test")
	require.NoError(t, err)

	for want := 2; want >= 0; want-- {
		res, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, want, res.Remaining)
	}

	res, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, c.Now().Add(time.Minute), res.ResetAt)

	// a denied request does not dig the bucket deeper
	c.Advance(time.Minute)
	res, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)

	c.Advance(24 * time.Hour)
	res, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining)

	other, err := l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.Equal(t, 2, other.Remaining)
}

func TestMemoryStore_RefillKeepsSchedule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &clock{now: start}
	store := ratelimit.NewMemoryStore(ratelimit.WithSweepInterval(0), ratelimit.WithClock(c.Now))
	l, err := ratelimit.New(store, ratelimit.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute}, "")
	require.NoError(t, err)

	res, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, res.Allowed())

	// a late request must not push the next refill past the minute mark
	c.Advance(90 * time.Second)
	res, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, res.Allowed())
	assert.Equal(t, start.Add(2*time.Minute), res.ResetAt)

	c.Advance(30 * time.Second)
	res, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, start.Add(3*time.Minute), res.ResetAt)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	store := ratelimit.NewMemoryStore(ratelimit.WithSweepInterval(0))
	l, err := ratelimit.New(store, ratelimit.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour}, "")
	require.NoError(t, err)

	var gotErr error
	h := ratelimit.Middleware(l, ratelimit.ByIP(), func(w http.ResponseWriter, _ *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(remote string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	first := call("192.0.2.1:1000")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	second := call("192.0.2.1:2000")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.ErrorIs(t, gotErr, ratelimit.ErrLimited)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, call("192.0.2.2:1000").Code)
}

type failingStore struct{}

func (failingStore) Take(context.Context, string, int, ratelimit.Config) (int, time.Time, error) {
	return 0, time.Time{}, ratelimit.ErrStoreUnavailable
}

func TestMiddleware_StoreFailureLetsRequestsThrough(t *testing.T) {
	t.Parallel()
	l, err := ratelimit.New(failingStore{}, ratelimit.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second}, "")
	require.NoError(t, err)

	h := ratelimit.Middleware(l, ratelimit.ByIP(), func(http.ResponseWriter, *http.Request, error) {
		t.Fatal("onError must not be called")
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestRedisStore needs a disposable server, e.g. REDIS_TEST_URL=redis://localhost:6379/15.
func TestRedisStore(t *testing.T) {
	t.Parallel()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	l, err := ratelimit.New(ratelimit.NewRedisStore(client), ratelimit.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Hour}, uuid.NewString())
	require.NoError(t, err)

	for _, want := range []int{1, 0, -1} {
		res, err := l.Allow(ctx, "ip")
		require.NoError(t, err)
		assert.Equal(t, want, res.Remaining)
	}
}

func TestRedisStore_Unavailable(t *testing.T) {
	t.Parallel()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	_, _, err := ratelimit.NewRedisStore(client).Take(context.Background(), "k", 1, ratelimit.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second})
	assert.True(t, errors.Is(err, ratelimit.ErrStoreUnavailable))
}
