// Package metrics exposes the service's Prometheus collectors. Collectors
// register on the default registry at init so any layer can record to them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GatewayCallDuration observes wall time of individual gateway HTTP
	// calls, including failed attempts.
	GatewayCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "connect",
		Subsystem: "gateway",
		Name:      "call_duration_seconds",
		Help:      "Duration of integration gateway HTTP calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"connector", "action"})

	// GatewayRetries counts retry attempts beyond the first try.
	GatewayRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "connect",
		Subsystem: "gateway",
		Name:      "retries_total",
		Help:      "Gateway call retry attempts.",
	}, []string{"operation"})

	// ProbeResults counts connectivity probe outcomes per integration.
	ProbeResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "connect",
		Subsystem: "status",
		Name:      "probe_results_total",
		Help:      "Connectivity probe outcomes.",
	}, []string{"integration", "outcome"})

	// CommandResults counts processed structured commands per service.
	CommandResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "connect",
		Subsystem: "commands",
		Name:      "results_total",
		Help:      "Structured command outcomes.",
	}, []string{"service", "outcome"})
)
