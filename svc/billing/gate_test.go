package billing_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipfeed/shipfeed/svc/billing"
)

func TestCheckLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		plan    billing.Plan
		action  billing.Action
		count   int64
		allowed bool
		limit   int64
		cause   error
		reason  string
	}{
		{name: "free first project", plan: billing.PlanFree, action: billing.ActionCreateProject, count: 0, allowed: true, limit: 1},
		{
			name: "free second project", plan: billing.PlanFree, action: billing.ActionCreateProject, count: 1, limit: 1,
			cause: billing.ErrLimitExceeded, reason: "Free plan allows 1 project. Upgrade to Pro for unlimited projects.",
		},
		{name: "free tenth changelog", plan: billing.PlanFree, action: billing.ActionCreateChangelog, count: 9, allowed: true, limit: 10},
		{
			name: "free eleventh changelog", plan: billing.PlanFree, action: billing.ActionCreateChangelog, count: 10, limit: 10,
			cause: billing.ErrLimitExceeded, reason: "Free plan allows 10 changelogs per month. Upgrade to Pro for unlimited changelogs.",
		},
		{
			name: "free ai drafting", plan: billing.PlanFree, action: billing.ActionUseAIDrafting,
			cause: billing.ErrUpgradeRequired, reason: "AI drafting is a Pro feature",
		},
		{name: "pro many projects", plan: billing.PlanPro, action: billing.ActionCreateProject, count: 500, allowed: true, limit: billing.Unlimited},
		{name: "pro many changelogs", plan: billing.PlanPro, action: billing.ActionCreateChangelog, count: 10_000, allowed: true, limit: billing.Unlimited},
		{name: "pro ai drafting", plan: billing.PlanPro, action: billing.ActionUseAIDrafting, allowed: true, limit: billing.Unlimited},
		{name: "unknown action on pro", plan: billing.PlanPro, action: "delete_everything", cause: billing.ErrUnknownAction},
		{name: "unknown action on free", plan: billing.PlanFree, action: "", cause: billing.ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dec := billing.CheckLimit(tt.plan, tt.action, tt.count)

			assert.Equal(t, tt.action, dec.Action)
			assert.Equal(t, tt.allowed, dec.Allowed)
			if tt.allowed {
				assert.Equal(t, tt.limit, dec.Limit)
				assert.Empty(t, dec.Reason)
				assert.NoError(t, dec.Err())
				return
			}

			assert.NotEmpty(t, dec.Reason)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, dec.Reason)
			}
			err := dec.Err()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.cause)

			var deny *billing.DenyError
			require.True(t, errors.As(err, &deny))
			assert.Equal(t, dec.Reason, deny.Error())
		})
	}
}

func TestCheckLimit_Deterministic(t *testing.T) {
	t.Parallel()
	a := billing.CheckLimit(billing.PlanFree, billing.ActionCreateChangelog, 10)
	b := billing.CheckLimit(billing.PlanFree, billing.ActionCreateChangelog, 10)
	assert.Equal(t, a.Allowed, b.Allowed)
	assert.Equal(t, a.Reason, b.Reason)
	assert.Equal(t, a.Limit, b.Limit)
}

func TestParsePlan(t *testing.T) {
	t.Parallel()
	assert.Equal(t, billing.PlanPro, billing.ParsePlan("pro"))
	for _, s := range []string{"", "free", "PRO", "enterprise", "team"} {
		assert.Equal(t, billing.PlanFree, billing.ParsePlan(s), s)
	}
}

func TestPlanForStatus(t *testing.T) {
	t.Parallel()
	tests := map[string]billing.Plan{
		billing.StatusActive:   billing.PlanPro,
		billing.StatusTrialing: billing.PlanPro,
		billing.StatusPastDue:  billing.PlanFree,
		billing.StatusCanceled: billing.PlanFree,
		"unpaid":               billing.PlanFree,
		"":                     billing.PlanFree,
	}
	for status, want := range tests {
		assert.Equal(t, want, billing.PlanForStatus(status), status)
	}
}
