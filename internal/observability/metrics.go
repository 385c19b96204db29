// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for one process. All fields are
// safe to use on a nil *Metrics receiver through the helper methods, so
// components can run without metrics in tests.
type Metrics struct {
	// GatewayRequests counts index requests by endpoint and outcome
	// (ok, unavailable, malformed).
	GatewayRequests *prometheus.CounterVec

	// GatewayLatency observes index request duration in seconds by endpoint.
	GatewayLatency *prometheus.HistogramVec

	// StaleResponses counts search responses discarded because a newer query
	// superseded them.
	StaleResponses prometheus.Counter

	// LibraryWrites counts library persistence attempts by outcome.
	LibraryWrites *prometheus.CounterVec

	// AgentPolls counts research agent status polls by HTTP status.
	AgentPolls *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "optoscholar",
			Name:      "gateway_requests_total",
			Help:      "Requests sent to the citation index, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		GatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "optoscholar",
			Name:      "gateway_request_duration_seconds",
			Help:      "Duration of citation index requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		StaleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optoscholar",
			Name:      "session_stale_responses_total",
			Help:      "Search responses discarded because a newer query was submitted.",
		}),
		LibraryWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "optoscholar",
			Name:      "library_writes_total",
			Help:      "Library persistence attempts, by outcome.",
		}, []string{"outcome"}),
		AgentPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "optoscholar",
			Name:      "agent_polls_total",
			Help:      "Research agent status polls, by HTTP status code.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.GatewayRequests, m.GatewayLatency, m.StaleResponses, m.LibraryWrites, m.AgentPolls)
	return m
}

// ObserveGateway records one index request.
func (m *Metrics) ObserveGateway(endpoint, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.GatewayRequests.WithLabelValues(endpoint, outcome).Inc()
	m.GatewayLatency.WithLabelValues(endpoint).Observe(seconds)
}

// IncStale records a discarded search response.
func (m *Metrics) IncStale() {
	if m == nil {
		return
	}
	m.StaleResponses.Inc()
}

// ObserveLibraryWrite records a persistence attempt.
func (m *Metrics) ObserveLibraryWrite(outcome string) {
	if m == nil {
		return
	}
	m.LibraryWrites.WithLabelValues(outcome).Inc()
}

// ObserveAgentPoll records a status poll.
func (m *Metrics) ObserveAgentPoll(status string) {
	if m == nil {
		return
	}
	m.AgentPolls.WithLabelValues(status).Inc()
}

// WriteTextfile dumps every metric gathered by g to path in the Prometheus
// text format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
