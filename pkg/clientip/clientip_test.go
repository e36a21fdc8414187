package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shipfeed/shipfeed/pkg/clientip"
)

func TestFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{name: "remote addr", remoteAddr: "203.0.113.7:5123", want: "203.0.113.7"},
		{name: "remote addr without port", remoteAddr: "203.0.113.7", want: "203.0.113.7"},
		{name: "cloudflare wins", headers: map[string]string{"CF-Connecting-IP": "198.51.100.1", "X-Forwarded-For": "198.51.100.2"}, remoteAddr: "10.0.0.1:1", want: "198.51.100.1"},
		{name: "first valid forwarded entry", headers: map[string]string{"X-Forwarded-For": "garbage, 198.51.100.2, 10.0.0.3"}, remoteAddr: "10.0.0.1:1", want: "198.51.100.2"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "198.51.100.9"}, remoteAddr: "10.0.0.1:1", want: "198.51.100.9"},
		{name: "ipv4 mapped ipv6", remoteAddr: "[::ffff:192.0.2.10]:80", want: "192.0.2.10"},
		{name: "ipv6", headers: map[string]string{"X-Forwarded-For": "2001:db8::1"}, remoteAddr: "10.0.0.1:1", want: "2001:db8::1"},
		{name: "nothing parses", headers: map[string]string{"X-Real-IP": "nope"}, remoteAddr: "pipe", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.FromRequest(r))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var seen string
	h := clientip.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = clientip.FromContext(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.44:443"
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "192.0.2.44", seen)

	attr, ok := clientip.LoggerExtractor()(clientip.WithIP(r.Context(), "192.0.2.44"))
	assert.True(t, ok)
	assert.Equal(t, "192.0.2.44", attr.Value.String())
}
