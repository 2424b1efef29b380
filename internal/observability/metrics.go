// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for verification metrics.
const (
	OutcomeAllow = "allow"
	OutcomeDeny  = "deny"
)

// Verifications counts join verification checks by check name and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Verifications = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authward_verifications_total",
		Help: "Total number of join verification checks",
	},
	[]string{"check", "outcome"},
)

// SuppressedActions counts actions suppressed by the unauthenticated
// action gate, by category.
var SuppressedActions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authward_suppressed_actions_total",
		Help: "Total number of actions suppressed for unauthenticated players",
	},
	[]string{"category"},
)

// AntibotRejections counts connections rejected while the burst sensor is
// in reject mode.
var AntibotRejections = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "authward_antibot_rejections_total",
		Help: "Total number of connections rejected by the antibot guard",
	},
)

// AntibotKicks counts forced kicks recorded by the antibot guard.
var AntibotKicks = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "authward_antibot_kicks_total",
		Help: "Total number of forced kicks recorded by the antibot guard",
	},
)

// MovementDecisions counts movement restriction outcomes.
var MovementDecisions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authward_movement_decisions_total",
		Help: "Total number of movement restriction decisions",
	},
	[]string{"decision"},
)

// ActiveSessions tracks the number of live (pending or authenticated)
// sessions.
var ActiveSessions = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "authward_active_sessions",
		Help: "Current number of live sessions",
	},
)

// RegisterMetrics registers AuthWard metrics with the given registry.
// Must be called at startup so metrics appear on /metrics.
// Panics if registration fails (prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Verifications)
	reg.MustRegister(SuppressedActions)
	reg.MustRegister(AntibotRejections)
	reg.MustRegister(AntibotKicks)
	reg.MustRegister(MovementDecisions)
	reg.MustRegister(ActiveSessions)
}

// RecordVerification increments the verification counter.
func RecordVerification(check, outcome string) {
	Verifications.WithLabelValues(check, outcome).Inc()
}

// RecordSuppressedAction increments the suppressed action counter.
func RecordSuppressedAction(category string) {
	SuppressedActions.WithLabelValues(category).Inc()
}

// RecordAntibotRejection increments the antibot rejection counter.
func RecordAntibotRejection() {
	AntibotRejections.Inc()
}

// RecordAntibotKick increments the antibot forced-kick counter.
func RecordAntibotKick() {
	AntibotKicks.Inc()
}

// RecordMovementDecision increments the movement decision counter.
func RecordMovementDecision(decision string) {
	MovementDecisions.WithLabelValues(decision).Inc()
}

// SetActiveSessions updates the live session gauge.
func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}
