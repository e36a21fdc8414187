package billing

import "fmt"

// Action is a gated operation.
type Action string

const (
	ActionCreateProject   Action = "create_project"
	ActionCreateChangelog Action = "create_changelog"
	ActionUseAIDrafting   Action = "use_ai_drafting"
)

const (
	FreeProjectLimit          int64 = 1
	FreeMonthlyChangelogLimit int64 = 10

	// Unlimited is reported as the limit for pro plans.
	Unlimited int64 = -1
)

// Decision is the gate's verdict. Limit is the cap that applied, or
// Unlimited; it is 0 for features that are not metered.
type Decision struct {
	Action  Action
	Allowed bool
	Reason  string
	Limit   int64

	cause error
}

// Err returns nil for allowed decisions and a *DenyError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DenyError{Action: d.Action, Reason: d.Reason, cause: d.cause}
}

// DenyError carries the user-facing reason. It matches ErrLimitExceeded,
// ErrUpgradeRequired or ErrUnknownAction via errors.Is.
type DenyError struct {
	Action Action
	Reason string
	cause  error
}

func (e *DenyError) Error() string { return e.Reason }
func (e *DenyError) Unwrap() error { return e.cause }

// CheckLimit is pure: the caller supplies the plan and the current count
// for the action's window.
func CheckLimit(plan Plan, action Action, currentCount int64) Decision {
	switch action {
	case ActionCreateProject, ActionCreateChangelog, ActionUseAIDrafting:
	default:
		return Decision{
			Action: action,
			Reason: fmt.Sprintf("Unknown action %q", action),
			cause:  ErrUnknownAction,
		}
	}

	if plan.IsPro() {
		return Decision{Action: action, Allowed: true, Limit: Unlimited}
	}

	switch action {
	case ActionCreateProject:
		return metered(action, currentCount, FreeProjectLimit,
			"Free plan allows 1 project. Upgrade to Pro for unlimited projects.")
	case ActionCreateChangelog:
		return metered(action, currentCount, FreeMonthlyChangelogLimit,
			"Free plan allows 10 changelogs per month. Upgrade to Pro for unlimited changelogs.")
	default:
		return Decision{
			Action: action,
			Reason: "AI drafting is a Pro feature",
			cause:  ErrUpgradeRequired,
		}
	}
}

func metered(action Action, count, limit int64, reason string) Decision {
	if count < limit {
		return Decision{Action: action, Allowed: true, Limit: limit}
	}
	return Decision{Action: action, Reason: reason, Limit: limit, cause: ErrLimitExceeded}
}
