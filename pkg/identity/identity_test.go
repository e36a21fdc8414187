package identity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipfeed/shipfeed/pkg/identity"
)

func newVerifier(t *testing.T) *identity.Verifier {
	t.Helper()
	v, err := identity.NewVerifier(identity.Config{Secret: "test-secret", Issuer: "shipfeed", Leeway: time.Second})
	require.NoError(t, err)
	return v
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	t.Parallel()
	_, err := identity.NewVerifier(identity.Config{})
	assert.ErrorIs(t, err, identity.ErrMissingSecret)
}

func TestVerifier_RoundTrip(t *testing.T) {
	t.Parallel()

	v := newVerifier(t)
	want := identity.User{ID: uuid.New(), Email: "dev@example.com"}
	token, err := v.Issue(want, time.Hour)
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVerifier_Rejects(t *testing.T) {
	t.Parallel()

	v := newVerifier(t)
	other, err := identity.NewVerifier(identity.Config{Secret: "other", Issuer: "shipfeed"})
	require.NoError(t, err)

	expired, err := v.Issue(identity.User{ID: uuid.New(), Email: "dev@example.com"}, -time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue(identity.User{ID: uuid.New(), Email: "dev@example.com"}, time.Hour)
	require.NoError(t, err)
	noEmail, err := v.Issue(identity.User{ID: uuid.New()}, time.Hour)
	require.NoError(t, err)
	blankEmail, err := v.Issue(identity.User{ID: uuid.New(), Email: "   "}, time.Hour)
	require.NoError(t, err)
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		Issuer:    "shipfeed",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":     expired,
		"wrong key":   foreign,
		"bad subject": badSubject,
		"no email":    noEmail,
		"blank email": blankEmail,
		"garbage":     "a.b.c",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := v.Verify(token)
			assert.ErrorIs(t, err, identity.ErrUnauthenticated)
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	v := newVerifier(t)
	user := identity.User{ID: uuid.New(), Email: "dev@example.com"}
	token, err := v.Issue(user, time.Hour)
	require.NoError(t, err)

	var seen identity.User
	h := identity.Middleware(v, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, err = identity.FromContext(r.Context())
		require.NoError(t, err)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user, seen)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
