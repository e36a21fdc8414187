// Package redis connects to Redis with go-redis and exposes a readiness probe.
//
// Redis is optional for shipfeed. When REDIS_URL is set it backs webhook
// event de-duplication and the shared rate limit buckets. Without it events
// are not de-duplicated and each process keeps its own buckets.
//
//	cfg := redis.Config{ConnectionURL: os.Getenv("REDIS_URL")}
//	if cfg.Enabled() {
//		client, err := redis.Connect(ctx, cfg)
//		if err != nil {
//			return err // redis.ErrRedisNotReady after ConnectTimeout
//		}
//		checks["redis"] = redis.Healthcheck(client)
//	}
package redis
