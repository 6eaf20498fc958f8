// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package metrics holds the Prometheus counters of the reset and login flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSent           = "sent"
	OutcomeNotAccepted    = "not_accepted"
	OutcomeUnknownUser    = "unknown_user"
	OutcomeDeliveryFailed = "delivery_failed"
	OutcomeSuccess        = "success"
	OutcomeInvalidLink    = "invalid_link"
	OutcomeReused         = "reused"
	OutcomeRejected       = "rejected"
	OutcomeFailure        = "failure"
)

// Metrics contains the application counters.
type Metrics struct {
	ResetRequests    *prometheus.CounterVec
	ResetCompletions *prometheus.CounterVec
	Logins           *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ResetRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passreset_reset_requests_total",
				Help: "Total number of reset link requests by outcome",
			},
			[]string{"outcome"},
		),
		ResetCompletions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passreset_reset_completions_total",
				Help: "Total number of reset submissions by outcome",
			},
			[]string{"outcome"},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passreset_logins_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(m.ResetRequests, m.ResetCompletions, m.Logins)
	return m
}

// NewRegistry returns a private registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler exposes the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ResetRequest records the outcome of a reset link request.
func (m *Metrics) ResetRequest(outcome string) {
	if m == nil {
		return
	}
	m.ResetRequests.WithLabelValues(outcome).Inc()
}

// ResetCompletion records the outcome of a reset submission.
func (m *Metrics) ResetCompletion(outcome string) {
	if m == nil {
		return
	}
	m.ResetCompletions.WithLabelValues(outcome).Inc()
}

// Login records the outcome of a login attempt.
func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}
