package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shipfeed"

// Metrics owns the service's collectors. A nil *Metrics records nothing,
// so components can be built without one in tests.
type Metrics struct {
	registry *prometheus.Registry

	GateDecisions *prometheus.CounterVec
	WebhookEvents *prometheus.CounterVec
	DraftResults  *prometheus.CounterVec
	DraftDuration prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		GateDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Entitlement gate decisions by action, plan and outcome.",
		}, []string{"action", "plan", "outcome"}),
		WebhookEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Billing webhook events by provider, normalized type and outcome.",
		}, []string{"provider", "type", "outcome"}),
		DraftResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draft_results_total",
			Help:      "Changelog drafts by source (model or fallback).",
		}, []string{"source"}),
		DraftDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "draft_duration_seconds",
			Help:      "Time spent producing a changelog draft.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
		}),
	}
}

func (m *Metrics) Gate(action, plan string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.GateDecisions.WithLabelValues(action, plan, outcome).Inc()
}

func (m *Metrics) Webhook(provider, eventType, outcome string) {
	if m == nil {
		return
	}
	m.WebhookEvents.WithLabelValues(provider, eventType, outcome).Inc()
}

func (m *Metrics) Draft(source string, took time.Duration) {
	if m == nil {
		return
	}
	m.DraftResults.WithLabelValues(source).Inc()
	m.DraftDuration.Observe(took.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
