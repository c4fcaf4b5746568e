// Package metrics holds the Prometheus collectors for the donation
// lifecycle and the authorization pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsCreated   prometheus.Counter
	Acceptances       prometheus.Counter
	AcceptanceReplays prometheus.Counter
	StatusChanges     *prometheus.CounterVec
	AccessDenied      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "redaid_donation_requests_created_total",
			Help: "Donation requests created",
		}),
		Acceptances: f.NewCounter(prometheus.CounterOpts{
			Name: "redaid_donation_acceptances_total",
			Help: "Donor acceptances applied (donor counter incremented)",
		}),
		AcceptanceReplays: f.NewCounter(prometheus.CounterOpts{
			Name: "redaid_donation_acceptance_replays_total",
			Help: "Acceptances skipped because their idempotency key was already used",
		}),
		StatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redaid_donation_status_changes_total",
			Help: "Donation request status changes by target status",
		}, []string{"status"}),
		AccessDenied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redaid_access_denied_total",
			Help: "Requests rejected by the access gate",
		}, []string{"reason"}),
	}
}

func (m *Metrics) IncRequestsCreated() {
	if m != nil {
		m.RequestsCreated.Inc()
	}
}

func (m *Metrics) IncAcceptances() {
	if m != nil {
		m.Acceptances.Inc()
	}
}

func (m *Metrics) IncAcceptanceReplays() {
	if m != nil {
		m.AcceptanceReplays.Inc()
	}
}

func (m *Metrics) IncStatusChange(status string) {
	if m != nil {
		m.StatusChanges.WithLabelValues(status).Inc()
	}
}

// IncAccessDenied counts a gate rejection. reason is one of
// "missing_credential", "invalid_credential", "self_mismatch", "role".
func (m *Metrics) IncAccessDenied(reason string) {
	if m != nil {
		m.AccessDenied.WithLabelValues(reason).Inc()
	}
}
