package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Resolver maps a user to the plan that governs their entitlements. It keeps
// no cache, so a webhook applied a moment ago is visible on the next call.
type Resolver struct {
	store SubscriptionStore
}

// NewResolver reads plans from store.
func NewResolver(store SubscriptionStore) *Resolver {
	return &Resolver{store: store}
}

// ResolvePlan reads the user's subscription on every call. A user without
// a subscription row is on the free plan.
func (r *Resolver) ResolvePlan(ctx context.Context, userID uuid.UUID) (Plan, error) {
	sub, err := r.store.GetByUser(ctx, userID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return PlanFree, nil
	}
	if err != nil {
		return PlanFree, fmt.Errorf("resolve plan: %w", err)
	}
	return ParsePlan(string(sub.Plan)), nil
}
