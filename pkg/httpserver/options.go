package httpserver

import (
	"log/slog"
	"time"
)

// Option configures a Server.
type Option func(*Server)

func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: empty addr")
	}
	return func(s *Server) { s.addr = addr }
}

func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) { s.readTimeout = d }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) { s.writeTimeout = d }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) { s.idleTimeout = d }
}

func WithShutdownTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("httpserver: shutdown timeout must be > 0")
	}
	return func(s *Server) { s.shutdownTimeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}
