// Package ratelimit provides token bucket rate limiting with in-memory and
// Redis backed stores and an HTTP middleware.
//
// A bucket holds up to Capacity tokens. Every RefillInterval, RefillRate
// tokens are added back. Refills happen on whole intervals counted from
// the previous refill, so a request landing mid-interval does not delay
// the next one. A denied request takes nothing from the bucket.
//
// # Basic Usage
//
//	store := ratelimit.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimit.New(store, ratelimit.Config{
//		Capacity:       20,
//		RefillRate:     20,
//		RefillInterval: time.Minute,
//	}, "public")
//	if err != nil {
//		return err // errors.Is(err, ratelimit.ErrInvalidConfig)
//	}
//
//	res, err := limiter.Allow(ctx, "203.0.113.7")
//	if err != nil {
//		return err
//	}
//	if !res.Allowed() {
//		// retry after res.RetryAfter()
//	}
//
// # Shared buckets
//
// Replicas behind a load balancer should share buckets. RedisStore runs the
// same arithmetic in a Lua script so each Take is atomic on the server:
//
//	limiter, err := ratelimit.New(ratelimit.NewRedisStore(client), cfg, "public")
//
// Store failures surface as ErrStoreUnavailable.
//
// # HTTP Middleware
//
//	mw := ratelimit.Middleware(limiter, ratelimit.ByIP(), func(w http.ResponseWriter, r *http.Request, err error) {
//		http.Error(w, err.Error(), http.StatusTooManyRequests)
//	})
//	r.With(mw).Post("/subscribe", subscribe)
//
// The middleware sets X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset on every limited route, and Retry-After on denials.
// When the store fails the request is let through.
package ratelimit
