// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package cost

import "github.com/prometheus/client_golang/prometheus"

// ChargedUnits counts cost units successfully charged.
var ChargedUnits = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "periscope_cost_charged_units_total",
		Help: "Total number of cost units charged across all call trees",
	},
)

// Denials counts charges rejected because a quota was exhausted.
var Denials = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "periscope_cost_denials_total",
		Help: "Total number of charges denied by an exhausted quota",
	},
)

// RegisterMetrics registers cost metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ChargedUnits)
	reg.MustRegister(Denials)
}

func recordCharge(amount int64) {
	ChargedUnits.Add(float64(amount))
}

func recordDenial() {
	Denials.Inc()
}
