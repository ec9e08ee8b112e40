package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeSimulated = "simulated"
)

// Metrics counts collector-side outcomes. A nil *Metrics records nothing.
type Metrics struct {
	SignIns       *prometheus.CounterVec
	Verifications *prometheus.CounterVec
	Records       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SignIns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvass_collector_sign_ins_total",
			Help: "Operator sign-in attempts by outcome",
		}, []string{"outcome"}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvass_collector_verifications_total",
			Help: "Identity verifications by outcome (success or simulated)",
		}, []string{"outcome"}),
		Records: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvass_collector_records_total",
			Help: "Record submissions by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncSignIn(outcome string) {
	if m == nil {
		return
	}
	m.SignIns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncVerification(outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncRecord(outcome string) {
	if m == nil {
		return
	}
	m.Records.WithLabelValues(outcome).Inc()
}
