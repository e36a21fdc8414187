package billing

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shipfeed/shipfeed/pkg/logger"
	"github.com/shipfeed/shipfeed/pkg/metrics"
)

// Entitlements answers "may this user do this now?".
type Entitlements struct {
	resolver *Resolver
	counters *Counters
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewEntitlements(resolver *Resolver, counters *Counters, m *metrics.Metrics, log *slog.Logger) *Entitlements {
	if log == nil {
		log = logger.Noop()
	}
	return &Entitlements{resolver: resolver, counters: counters, metrics: m, log: log}
}

// Authorize resolves the plan, counts usage only when the plan is metered,
// and returns the gate's decision. Store failures come back as errors,
// never as denials.
func (e *Entitlements) Authorize(ctx context.Context, userID uuid.UUID, action Action) (Decision, error) {
	plan, err := e.resolver.ResolvePlan(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	var count int64
	if !plan.IsPro() {
		if count, err = e.counters.Count(ctx, userID, action); err != nil {
			return Decision{}, err
		}
	}

	dec := CheckLimit(plan, action, count)
	e.metrics.Gate(string(action), plan.String(), dec.Allowed)
	if !dec.Allowed {
		e.log.InfoContext(ctx, "entitlement denied",
			logger.Component("billing"),
			logger.UserID(userID.String()),
			slog.String("action", string(action)),
			slog.String("plan", plan.String()),
			slog.Int64("count", count),
		)
	}
	return dec, nil
}

// Usage is the dashboard view of a user's plan.
type Usage struct {
	Plan                  Plan  `json:"plan"`
	Projects              int64 `json:"projects"`
	ProjectLimit          int64 `json:"projectLimit"`
	MonthlyChangelogs     int64 `json:"monthlyChangelogs"`
	MonthlyChangelogLimit int64 `json:"monthlyChangelogLimit"`
	AIDrafting            bool  `json:"aiDrafting"`
}

func (e *Entitlements) Usage(ctx context.Context, userID uuid.UUID) (Usage, error) {
	plan, err := e.resolver.ResolvePlan(ctx, userID)
	if err != nil {
		return Usage{}, err
	}
	projects, err := e.counters.ProjectCount(ctx, userID)
	if err != nil {
		return Usage{}, err
	}
	changelogs, err := e.counters.MonthlyChangelogCount(ctx, userID)
	if err != nil {
		return Usage{}, err
	}

	u := Usage{
		Plan:                  plan,
		Projects:              projects,
		ProjectLimit:          FreeProjectLimit,
		MonthlyChangelogs:     changelogs,
		MonthlyChangelogLimit: FreeMonthlyChangelogLimit,
		AIDrafting:            plan.IsPro(),
	}
	if plan.IsPro() {
		u.ProjectLimit, u.MonthlyChangelogLimit = Unlimited, Unlimited
	}
	return u, nil
}
