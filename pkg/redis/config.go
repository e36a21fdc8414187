package redis

import "time"

// Config for the optional Redis connection. An empty URL disables Redis-backed features.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                              // redis://:password@localhost:6379/0
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // connect attempts before giving up
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`   // delay between attempts
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"15s"` // overall connect budget
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
