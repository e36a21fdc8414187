// Package clientip resolves the caller's address behind reverse proxies and
// carries it on the request context.
package clientip

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/shipfeed/shipfeed/pkg/logger"
)

// FromRequest checks CF-Connecting-IP, the first valid X-Forwarded-For
// entry and X-Real-IP before falling back to RemoteAddr. It returns ""
// when nothing parses.
func FromRequest(r *http.Request) string {
	if ip := parse(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for part := range strings.SplitSeq(fwd, ",") {
			if ip := parse(part); ip != "" {
				return ip
			}
		}
	}
	if ip := parse(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return parse(host)
	}
	return parse(r.RemoteAddr)
}

func parse(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return addr.Unmap().WithZone("").String()
}

type contextKey struct{}

func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

// Middleware stores FromRequest's answer on the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithIP(r.Context(), FromRequest(r))))
	})
}

func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if ip := FromContext(ctx); ip != "" {
			return slog.String("client_ip", ip), true
		}
		return slog.Attr{}, false
	}
}
