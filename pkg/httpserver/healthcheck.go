package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// LivenessHandler always answers 200; the process is up if it can reply.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "alive"})
	}
}

// ReadinessHandler runs every named check and answers 503 if any fails.
// Failure details are logged, never returned to the caller.
func ReadinessHandler(log *slog.Logger, checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		result := make(map[string]string, len(checks))
		ready := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				ready = false
				result[name] = "down"
				log.ErrorContext(ctx, "readiness check failed", slog.String("check", name), slog.Any("error", err))
				continue
			}
			result[name] = "up"
		}

		code, status := http.StatusOK, "ready"
		if !ready {
			code, status = http.StatusServiceUnavailable, "not_ready"
		}
		writeStatus(w, code, map[string]any{"status": status, "checks": result})
	}
}

func writeStatus(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
