package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookOutcomesTotal counts Mercado Pago webhook deliveries by outcome.
	WebhookOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "instauto",
		Subsystem: "billing",
		Name:      "webhook_outcomes_total",
		Help:      "Mercado Pago webhook deliveries by outcome kind and reason.",
	}, []string{"kind", "reason"})

	// WebhookDuration tracks webhook processing latency.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "instauto",
		Subsystem: "billing",
		Name:      "webhook_duration_seconds",
		Help:      "Mercado Pago webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	// PlanTransitionsTotal counts plan changes applied to workshop records.
	PlanTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "instauto",
		Subsystem: "billing",
		Name:      "plan_transitions_total",
		Help:      "Applied workshop plan transitions.",
	}, []string{"from", "to"})

	// AccessDecisionsTotal counts access guard verdicts.
	AccessDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "instauto",
		Subsystem: "guard",
		Name:      "access_decisions_total",
		Help:      "Access guard decisions (granted/denied).",
	}, []string{"result"})

	// ProvisioningTotal counts provisioning attempts and outcomes.
	ProvisioningTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "instauto",
		Subsystem: "accounts",
		Name:      "provisioning_total",
		Help:      "Workshop plan record provisioning attempts by outcome.",
	}, []string{"outcome"})
)

func ObserveAccess(granted bool) {
	result := "denied"
	if granted {
		result = "granted"
	}
	AccessDecisionsTotal.WithLabelValues(result).Inc()
}

// JobsTotal counts background job state changes.
var JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "instauto",
	Subsystem: "jobs",
	Name:      "jobs_total",
	Help:      "Background jobs by type and status.",
}, []string{"type", "status"})
