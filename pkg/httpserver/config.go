package httpserver

import "time"

type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"` // covers slow AI draft calls
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// NewFromConfig builds a Server from cfg; zero values keep the defaults.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	base := make([]Option, 0, 5+len(opts))
	if cfg.Addr != "" {
		base = append(base, WithAddr(cfg.Addr))
	}
	if cfg.ReadTimeout > 0 {
		base = append(base, WithReadTimeout(cfg.ReadTimeout))
	}
	if cfg.WriteTimeout > 0 {
		base = append(base, WithWriteTimeout(cfg.WriteTimeout))
	}
	if cfg.IdleTimeout > 0 {
		base = append(base, WithIdleTimeout(cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout > 0 {
		base = append(base, WithShutdownTimeout(cfg.ShutdownTimeout))
	}
	return New(append(base, opts...)...)
}
