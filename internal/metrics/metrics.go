package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the prometheus collectors shared across components.
type Metrics struct {
	AIRequests     *prometheus.CounterVec
	AILatency      *prometheus.HistogramVec
	ChatTurns      *prometheus.CounterVec
	PlansGenerated *prometheus.CounterVec
	Errors         *prometheus.CounterVec
}

// New registers all collectors on the given registerer under namespace.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "AI gateway requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		AILatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_request_duration_seconds",
			Help:      "AI gateway request latency by provider and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "status"}),
		ChatTurns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Conversation turns by resulting message kind.",
		}, []string{"kind"}),
		PlansGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_generated_total",
			Help:      "Investment plans generated by source (ai or fallback).",
		}, []string{"source"}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors by processing stage.",
		}, []string{"stage"}),
	}
}
