package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shipfeed/shipfeed/handler"
	"github.com/shipfeed/shipfeed/pkg/clientip"
	"github.com/shipfeed/shipfeed/pkg/httpserver"
	"github.com/shipfeed/shipfeed/pkg/identity"
	"github.com/shipfeed/shipfeed/pkg/logger"
	"github.com/shipfeed/shipfeed/pkg/metrics"
	"github.com/shipfeed/shipfeed/pkg/ratelimit"
	"github.com/shipfeed/shipfeed/pkg/requestid"
	"github.com/shipfeed/shipfeed/svc/billing"
	"github.com/shipfeed/shipfeed/svc/changelog"
	"github.com/shipfeed/shipfeed/svc/drafting"
)

// RouterOptions carries the services behind the API. Metrics and Checks
// are optional.
type RouterOptions struct {
	Config       Config
	Logger       *slog.Logger
	Verifier     *identity.Verifier
	Profiles     ProfileStore
	Changelogs   *changelog.Service
	Entitlements *billing.Entitlements
	Checkout     *billing.Checkout
	Reconciler   *billing.Reconciler
	Drafter      *drafting.Drafter
	Metrics      *metrics.Metrics
	Checks       map[string]httpserver.Check
	// PublicLimiter throttles the unauthenticated subscribe endpoints per
	// client IP.
	PublicLimiter *ratelimit.Limiter
}

// Router builds the HTTP surface.
//
//	r := api.Router(api.RouterOptions{...})
//	srv.Run(ctx, r)
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	maxWebhook := opts.Config.MaxWebhookBytes
	if maxWebhook <= 0 {
		maxWebhook = 1 << 20
	}
	onError := handler.NewErrorHandler(log, toHTTPError)
	auth := requireUser(opts.Verifier, opts.Profiles, onError)
	var publicLimit func(http.Handler) http.Handler
	if opts.PublicLimiter != nil {
		publicLimit = ratelimit.Middleware(opts.PublicLimiter, ratelimit.ByIP(), func(w http.ResponseWriter, r *http.Request, err error) {
			onError(handler.NewContext(w, r), err)
		})
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware, middleware.Recoverer, accessLog(log))

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log, opts.Checks))
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Mount("/public", (&publicHandler{svc: opts.Changelogs, errorHandler: onError}).Handle())
		r.Mount("/subscribers", (&subscribersHandler{
			svc:          opts.Changelogs,
			requireUser:  auth,
			rateLimit:    publicLimit,
			errorHandler: onError,
		}).Handle())
		r.Method(http.MethodPost, "/webhooks/billing", (&webhookHandler{
			reconciler:   opts.Reconciler,
			maxBytes:     maxWebhook,
			errorHandler: onError,
		}).Handle())

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Mount("/projects", (&projectsHandler{svc: opts.Changelogs, errorHandler: onError}).Handle())
			r.Mount("/changelogs", (&changelogsHandler{svc: opts.Changelogs, errorHandler: onError}).Handle())
			r.Mount("/billing", (&billingHandler{
				entitlements: opts.Entitlements,
				checkout:     opts.Checkout,
				errorHandler: onError,
			}).Handle())
			r.Method(http.MethodPost, "/ai/generate-changelog", (&draftsHandler{
				entitlements: opts.Entitlements,
				drafter:      opts.Drafter,
				errorHandler: onError,
			}).Handle())
		})
	})

	return r
}
