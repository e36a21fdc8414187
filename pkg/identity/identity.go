package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shipfeed/shipfeed/pkg/logger"
)

var (
	ErrUnauthenticated = errors.New("identity: unauthenticated")
	ErrMissingSecret   = errors.New("identity: signing secret is required")
)

type Config struct {
	Secret string        `env:"AUTH_JWT_SECRET,required"`
	Issuer string        `env:"AUTH_JWT_ISSUER" envDefault:"shipfeed"`
	Leeway time.Duration `env:"AUTH_JWT_LEEWAY" envDefault:"30s"`
}

// User is the authenticated caller.
type User struct {
	ID    uuid.UUID
	Email string
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 session tokens issued by the auth front end.
type Verifier struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &Verifier{secret: []byte(cfg.Secret), issuer: cfg.Issuer, parser: jwt.NewParser(opts...)}, nil
}

// Verify returns the user carried by token. Tokens without a UUID subject
// or without an email claim are rejected. Any failure wraps ErrUnauthenticated.
func (v *Verifier) Verify(token string) (User, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return v.secret, nil })
	if err != nil {
		return User{}, errors.Join(ErrUnauthenticated, err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return User{}, fmt.Errorf("%w: subject is not a user id", ErrUnauthenticated)
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return User{}, fmt.Errorf("%w: token has no email claim", ErrUnauthenticated)
	}
	return User{ID: id, Email: email}, nil
}

// Issue signs a token for u. Used by the CLI and tests.
func (v *Verifier) Issue(u User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

type contextKey struct{}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns ErrUnauthenticated when no user was attached.
func FromContext(ctx context.Context) (User, error) {
	u, ok := ctx.Value(contextKey{}).(User)
	if !ok {
		return User{}, ErrUnauthenticated
	}
	return u, nil
}

// ErrorFunc renders an authentication failure.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// Middleware rejects requests without a valid bearer token.
func Middleware(v *Verifier, onError ErrorFunc) func(http.Handler) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				onError(w, r, ErrUnauthenticated)
				return
			}
			u, err := v.Verify(token)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if u, err := FromContext(ctx); err == nil {
			return logger.UserID(u.ID.String()), true
		}
		return slog.Attr{}, false
	}
}
