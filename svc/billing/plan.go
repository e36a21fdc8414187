package billing

// Plan is the closed set of tiers. Anything unrecognised is free.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// ParsePlan maps every value other than "pro" to PlanFree.
func ParsePlan(s string) Plan {
	if s == string(PlanPro) {
		return PlanPro
	}
	return PlanFree
}

func (p Plan) IsPro() bool    { return p == PlanPro }
func (p Plan) String() string { return string(p) }

// Provider subscription statuses we act on. Others are stored verbatim.
const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// PlanForStatus grants pro only while the provider reports the
// subscription as active or trialing.
func PlanForStatus(status string) Plan {
	switch status {
	case StatusActive, StatusTrialing:
		return PlanPro
	default:
		return PlanFree
	}
}
