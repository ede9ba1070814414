// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Runs counts script runs by outcome ("success" or "error").
// Use RegisterMetrics to register this with a Prometheus registry.
var Runs = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "periscope_script_runs_total",
		Help: "Total number of script runs",
	},
	[]string{"script", "status"},
)

// RunDuration observes how long scripts run, including quota waits.
var RunDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "periscope_script_run_duration_seconds",
		Help:    "Script run duration in seconds",
		Buckets: []float64{.001, .01, .1, .5, 1, 5, 30, 120},
	},
	[]string{"script"},
)

// RegisterMetrics registers script metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Runs)
	reg.MustRegister(RunDuration)
}

func recordRun(script string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	Runs.WithLabelValues(script, status).Inc()
	RunDuration.WithLabelValues(script).Observe(time.Since(started).Seconds())
}
