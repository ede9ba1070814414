// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package executor

import "github.com/prometheus/client_golang/prometheus"

const (
	statusSuccess   = "success"
	statusError     = "error"
	statusReset     = "reset"
	statusAbandoned = "abandoned"
)

var queueDepth = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "periscope_executor_queue_depth",
		Help: "Number of tasks waiting for the world goroutine",
	},
)

var tasksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "periscope_executor_tasks_total",
		Help: "Total number of world tasks by outcome",
	},
	[]string{"status"},
)

// RegisterMetrics registers executor metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(queueDepth)
	reg.MustRegister(tasksTotal)
}

func recordTask(status string) {
	tasksTotal.WithLabelValues(status).Inc()
}
