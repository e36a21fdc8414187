package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shipfeed/shipfeed/pkg/logger"
	"github.com/shipfeed/shipfeed/pkg/metrics"
)

// Outcome describes what a webhook did to stored state.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeNoop      Outcome = "noop"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	outcomeRejected  Outcome = "rejected"
	outcomeFailed    Outcome = "failed"
)

// Reconciler is the only writer of subscription rows.
type Reconciler struct {
	provider BillingProvider
	subs     SubscriptionStore
	users    UserStore
	dedupe   Deduper
	metrics  *metrics.Metrics
	log      *slog.Logger
	now      func() time.Time
}

type ReconcilerOption func(*Reconciler)

func WithDeduper(d Deduper) ReconcilerOption {
	return func(r *Reconciler) {
		if d != nil {
			r.dedupe = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) ReconcilerOption {
	return func(r *Reconciler) { r.metrics = m }
}

func WithLogger(l *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if l != nil {
			r.log = l
		}
	}
}

func NewReconciler(provider BillingProvider, subs SubscriptionStore, users UserStore, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		provider: provider,
		subs:     subs,
		users:    users,
		dedupe:   NoopDeduper{},
		log:      logger.Noop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SignatureHeader names the header the provider signs with.
func (r *Reconciler) SignatureHeader() string { return r.provider.SignatureHeader() }

// HandleWebhook verifies, deduplicates and applies one delivery. Nothing is
// read from the stores until the signature checks out. An event is marked
// as processed only after it was applied successfully.
func (r *Reconciler) HandleWebhook(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	name := r.provider.Name()

	event, err := r.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		r.metrics.Webhook(name, "unknown", string(outcomeRejected))
		r.log.WarnContext(ctx, "webhook rejected",
			logger.Component("billing"), logger.Provider(name), logger.Error(err))
		return outcomeRejected, err
	}

	attrs := []any{
		logger.Component("billing"),
		logger.Provider(name),
		logger.Event(event.ProviderEvent),
		slog.String("event_id", event.ID),
	}

	key := dedupeKey(name, event.ID)
	if event.ID != "" {
		seen, err := r.dedupe.Seen(ctx, key)
		if err != nil {
			r.log.WarnContext(ctx, "webhook dedupe unavailable", append(attrs, logger.Error(err))...)
		} else if seen {
			r.metrics.Webhook(name, string(event.Type), string(OutcomeDuplicate))
			r.log.InfoContext(ctx, "webhook duplicate", attrs...)
			return OutcomeDuplicate, nil
		}
	}

	outcome, err := r.Reconcile(ctx, event)
	if err != nil {
		r.metrics.Webhook(name, string(event.Type), string(outcomeFailed))
		r.log.ErrorContext(ctx, "webhook failed", append(attrs, logger.Error(err))...)
		return outcomeFailed, err
	}

	if event.ID != "" {
		if err := r.dedupe.Mark(ctx, key); err != nil {
			r.log.WarnContext(ctx, "webhook dedupe mark failed", append(attrs, logger.Error(err))...)
		}
	}

	r.metrics.Webhook(name, string(event.Type), string(outcome))
	r.log.InfoContext(ctx, "webhook processed", append(attrs, slog.String("outcome", string(outcome)))...)
	return outcome, nil
}

// Reconcile applies a verified event. Unknown users or subscriptions are a
// silent no-op so the provider does not retry what can never succeed.
func (r *Reconciler) Reconcile(ctx context.Context, event *Event) (Outcome, error) {
	switch event.Type {
	case EventCheckoutCompleted:
		return r.checkoutCompleted(ctx, event)
	case EventSubscriptionUpdated:
		return r.update(ctx, event.SubscriptionID, PlanForStatus(event.Status), event.Status)
	case EventSubscriptionDeleted:
		// status is stored as received, even when the provider sent none
		return r.update(ctx, event.SubscriptionID, PlanFree, event.Status)
	case EventInvoicePaymentFailed:
		if event.SubscriptionID == "" {
			return OutcomeNoop, nil
		}
		ok, err := r.subs.UpdateStatusByExternalID(ctx, event.SubscriptionID, StatusPastDue)
		return applied(ok, err, "mark past due")
	default:
		return OutcomeIgnored, nil
	}
}

func (r *Reconciler) checkoutCompleted(ctx context.Context, event *Event) (Outcome, error) {
	email := strings.ToLower(strings.TrimSpace(event.Email))
	if email == "" {
		return OutcomeNoop, nil
	}

	userID, err := r.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return OutcomeNoop, nil
	}
	if err != nil {
		return "", fmt.Errorf("find user by email: %w", err)
	}

	err = r.subs.UpsertForUser(ctx, Subscription{
		UserID:         userID,
		Plan:           PlanPro,
		Status:         StatusActive,
		CustomerID:     event.CustomerID,
		SubscriptionID: event.SubscriptionID,
		UpdatedAt:      r.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("upsert subscription: %w", err)
	}
	return OutcomeApplied, nil
}

func (r *Reconciler) update(ctx context.Context, subscriptionID string, plan Plan, status string) (Outcome, error) {
	if subscriptionID == "" {
		return OutcomeNoop, nil
	}
	ok, err := r.subs.UpdateByExternalID(ctx, subscriptionID, plan, status)
	return applied(ok, err, "update subscription")
}

func applied(ok bool, err error, op string) (Outcome, error) {
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return OutcomeNoop, nil
	}
	return OutcomeApplied, nil
}
