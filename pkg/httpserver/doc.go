// Package httpserver wraps net/http with context-driven lifecycle and
// liveness/readiness probes.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := srv.Run(ctx, router); err != nil { ... }
package httpserver
