// Package billing decides what a user's plan allows and keeps the stored
// subscription in step with the payment provider.
//
// The pieces compose in one direction. Resolver reads the plan from the
// subscription store, Counters measure current usage, and CheckLimit turns
// plan plus usage into a Decision. Entitlements wires the three together for
// callers.
//
// # Plans and limits
//
// There are two plans. PlanPro is unlimited. PlanFree allows one project in
// total, ten changelogs per calendar month and no AI drafting. Any stored
// plan value other than "pro" reads as free, and a user with no subscription
// row is free.
//
// CheckLimit is pure and can be called directly when the count is already
// known:
//
//	dec := billing.CheckLimit(billing.PlanFree, billing.ActionCreateProject, 1)
//	dec.Allowed // false
//	dec.Reason  // "Free plan allows 1 project. Upgrade to Pro for unlimited projects."
//
// # Authorizing an action
//
// Most callers go through Entitlements, which resolves the plan, counts the
// relevant resources and records the decision in metrics:
//
//	resolver := billing.NewResolver(store)
//	counters := billing.NewCounters(store, billing.WithLocation(loc))
//	ent := billing.NewEntitlements(resolver, counters, m, log)
//
//	dec, err := ent.Authorize(ctx, userID, billing.ActionCreateProject)
//	if err != nil {
//		return err
//	}
//	if err := dec.Err(); err != nil {
//		return err // errors.Is(err, billing.ErrLimitExceeded)
//	}
//
// A denied Decision carries a *DenyError that unwraps to ErrLimitExceeded
// for metered actions and to ErrUpgradeRequired for pro-only features.
// Counts are read on every call, so two concurrent requests can both pass
// the gate.
//
// # Webhooks
//
// Reconciler is the only writer of subscription rows. It verifies a
// provider webhook, normalises it into an Event and applies the matching
// transition:
//
//	checkout completed       upsert pro/active for the user with the billing email
//	subscription updated     plan from status (active, trialing are pro), store status
//	subscription deleted     plan free, store the status as received
//	invoice payment failed   status past_due, plan unchanged
//
// Every transition recomputes state from the payload, so replays are
// harmless. Events for unknown users or subscriptions are acknowledged
// with OutcomeNoop so the provider stops retrying them.
//
//	provider, err := billing.NewProvider(cfg)
//	if err != nil {
//		return err
//	}
//	rec := billing.NewReconciler(provider, store, store,
//		billing.WithDeduper(billing.NewRedisDeduper(client, cfg.DedupeTTL)),
//		billing.WithMetrics(m),
//		billing.WithLogger(log),
//	)
//	outcome, err := rec.HandleWebhook(ctx, body, r.Header.Get(rec.SignatureHeader()))
//
// A signature failure returns ErrInvalidSignature before any store is read.
// Store errors are returned so the provider retries the delivery.
//
// # Providers
//
// StripeProvider and PaddleProvider implement BillingProvider. Both verify
// signatures with their SDKs and also create hosted checkout and portal
// links, which Checkout exposes to the API.
package billing
