// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package method

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status values for method call metrics.
const (
	StatusSuccess       = "success"
	StatusError         = "error"
	StatusUnknown       = "unknown"
	StatusQuota         = "quota_exceeded"
	StatusLinkFailed    = "link_failed"
	StatusNotApplicable = "not_applicable"
	StatusBadArgument   = "bad_argument"
)

// Calls counts method invocations.
// Use RegisterMetrics to register this with a Prometheus registry.
var Calls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "periscope_method_calls_total",
		Help: "Total number of capability method calls",
	},
	[]string{"module", "method", "status"},
)

// Duration observes method call latency, including the world goroutine hop.
// Use RegisterMetrics to register this with a Prometheus registry.
var Duration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "periscope_method_duration_seconds",
		Help:    "Capability method call duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"module", "method"},
)

// RegisterMetrics registers method package metrics with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Calls)
	reg.MustRegister(Duration)
}

func recordCall(d *Descriptor, status string, started time.Time) {
	Calls.WithLabelValues(d.Module, d.Name, status).Inc()
	Duration.WithLabelValues(d.Module, d.Name).Observe(time.Since(started).Seconds())
}
