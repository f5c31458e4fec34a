package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions         *prometheus.CounterVec
	AllowlistBypasses prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "procuration_throttle_decisions_total",
			Help: "Throttle checks by decision (allowed, denied)",
		}, []string{"decision"}),
		AllowlistBypasses: factory.NewCounter(prometheus.CounterOpts{
			Name: "procuration_throttle_allowlist_bypass_total",
			Help: "Throttle checks skipped because the origin is allowlisted",
		}),
	}
}

func (m *Metrics) RecordDecision(allowed bool) {
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	m.Decisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) RecordAllowlistBypass() {
	m.AllowlistBypasses.Inc()
}
