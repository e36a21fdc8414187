package cli

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/shipfeed/shipfeed/api"
	"github.com/shipfeed/shipfeed/pkg/config"
	"github.com/shipfeed/shipfeed/pkg/httpserver"
	"github.com/shipfeed/shipfeed/pkg/identity"
	"github.com/shipfeed/shipfeed/pkg/metrics"
	"github.com/shipfeed/shipfeed/pkg/ratelimit"
	"github.com/shipfeed/shipfeed/svc/billing"
	"github.com/shipfeed/shipfeed/svc/changelog"
	"github.com/shipfeed/shipfeed/svc/drafting"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

type serveConfig struct {
	HTTP     httpserver.Config
	API      api.Config
	Identity identity.Config
	Billing  billing.Config
	Drafting drafting.Config
	// RateLimit applies to the public subscribe endpoints.
	RateLimit ratelimit.Config
}

func runServe(ctx context.Context, migrate bool) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	var cfg serveConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	if migrate {
		if err := a.migrate(ctx); err != nil {
			return err
		}
	}

	router, err := buildRouter(a, cfg)
	if err != nil {
		return err
	}

	a.log.InfoContext(ctx, "shipfeed starting",
		slog.String("version", version),
		slog.String("addr", cfg.HTTP.Addr),
		slog.String("storage_driver", a.cfg.StorageDriver),
	)
	return httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(a.log)).Run(ctx, router)
}

func buildRouter(a *app, cfg serveConfig) (http.Handler, error) {
	verifier, err := identity.NewVerifier(cfg.Identity)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Billing.Location()
	if err != nil {
		return nil, err
	}
	provider, err := billing.NewProvider(cfg.Billing)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	entitlements := billing.NewEntitlements(
		billing.NewResolver(a.store),
		billing.NewCounters(a.store, billing.WithLocation(loc)),
		m, a.log,
	)

	reconcilerOpts := []billing.ReconcilerOption{billing.WithMetrics(m), billing.WithLogger(a.log)}
	if a.redis != nil {
		reconcilerOpts = append(reconcilerOpts, billing.WithDeduper(billing.NewRedisDeduper(a.redis, cfg.Billing.DedupeTTL)))
	}

	drafter := drafting.New(cfg.Drafting, drafting.WithMetrics(m), drafting.WithLogger(a.log))
	if !drafter.Enabled() {
		a.log.Warn("DRAFT_API_KEY is not set, AI drafts use the plain fallback")
	}

	var limitStore ratelimit.Store
	if a.redis != nil {
		limitStore = ratelimit.NewRedisStore(a.redis)
	} else {
		limitStore = ratelimit.NewMemoryStore()
	}
	limiter, err := ratelimit.New(limitStore, cfg.RateLimit, "public")
	if err != nil {
		return nil, err
	}

	return api.Router(api.RouterOptions{
		Config:        cfg.API,
		Logger:        a.log,
		Verifier:      verifier,
		Profiles:      a.store,
		Changelogs:    changelog.NewService(a.store, entitlements, changelog.WithLogger(a.log)),
		Entitlements:  entitlements,
		Checkout:      billing.NewCheckout(provider, a.store, cfg.Billing.ProPriceID, cfg.API.AppURL),
		Reconciler:    billing.NewReconciler(provider, a.store, a.store, reconcilerOpts...),
		Drafter:       drafter,
		Metrics:       m,
		Checks:        a.checks,
		PublicLimiter: limiter,
	}), nil
}
