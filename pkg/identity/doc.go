// Package identity authenticates API callers from HS256 bearer tokens and
// carries the resulting User through the request context.
//
// Tokens are issued by the auth front end. A valid token has a uuid
// subject, an email claim, the configured issuer and an unexpired exp.
// Email is lowercased on the way in because billing matches users by it.
//
//	v, err := identity.NewVerifier(identity.Config{Secret: secret, Issuer: "shipfeed"})
//	if err != nil {
//		return err // identity.ErrMissingSecret
//	}
//
//	r.Group(func(r chi.Router) {
//		r.Use(identity.Middleware(v, renderAuthError))
//		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
//			u, _ := identity.FromContext(r.Context())
//			fmt.Fprintln(w, u.Email)
//		})
//	})
//
// Every rejection wraps ErrUnauthenticated. LoggerExtractor adds the user
// id to log records written with a request context.
package identity
