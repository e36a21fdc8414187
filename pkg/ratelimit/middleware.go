package ratelimit

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shipfeed/shipfeed/pkg/clientip"
)

var ErrLimited = errors.New("rate limit exceeded")

// KeyFunc picks the bucket for a request. An empty key skips limiting.
type KeyFunc func(*http.Request) string

// ByIP keys requests by client address.
func ByIP() KeyFunc {
	return func(r *http.Request) string {
		if ip := clientip.FromContext(r.Context()); ip != "" {
			return ip
		}
		return clientip.FromRequest(r)
	}
}

type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// Middleware answers denied requests through onError with ErrLimited after
// setting the X-RateLimit-* and Retry-After headers. A failing store lets
// the request through.
func Middleware(l *Limiter, key KeyFunc, onError ErrorFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}
			res, err := l.Allow(r.Context(), k)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				if secs := int(res.RetryAfter().Seconds()); secs > 0 {
					h.Set("Retry-After", strconv.Itoa(secs))
				}
				onError(w, r, ErrLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
