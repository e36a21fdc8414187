package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/shipfeed/shipfeed/handler"
	"github.com/shipfeed/shipfeed/pkg/identity"
	"github.com/shipfeed/shipfeed/pkg/logger"
)

// ProfileStore records authenticated users so billing webhooks can find
// them by email.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, id uuid.UUID, email string) error
}

func requireUser(v *identity.Verifier, profiles ProfileStore, onError handler.ErrorHandler) func(http.Handler) http.Handler {
	renderErr := func(w http.ResponseWriter, r *http.Request, err error) {
		onError(handler.NewContext(w, r), err)
	}
	authenticate := identity.Middleware(v, renderErr)

	return func(next http.Handler) http.Handler {
		syncProfile := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if profiles != nil {
				u, err := identity.FromContext(r.Context())
				if err != nil {
					renderErr(w, r, err)
					return
				}
				if err := profiles.UpsertProfile(r.Context(), u.ID, u.Email); err != nil {
					renderErr(w, r, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
		return authenticate(syncProfile)
	}
}

func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.LogAttrs(r.Context(), slog.LevelInfo, "http request",
				logger.Component("http"),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status_code", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("took", time.Since(start)),
			)
		})
	}
}
