package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the request lifecycle.
type Metrics struct {
	TransitionsTotal   *prometheus.CounterVec
	TransitionDuration *prometheus.HistogramVec
	ThrottleRejections prometheus.Counter
	MailFailures       prometheus.Counter
	RequestersTotal    prometheus.Counter
	HTTPLatency        *prometheus.HistogramVec
}

// New creates the metrics and registers them on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "procuration_transitions_total",
			Help: "Lifecycle transitions by name and outcome code",
		}, []string{"transition", "outcome"}),
		TransitionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "procuration_transition_duration_seconds",
			Help:    "Duration of lifecycle transitions, external calls included",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"transition"}),
		ThrottleRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "procuration_throttle_rejections_total",
			Help: "Submissions rejected by the per-origin throttle",
		}),
		MailFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "procuration_mail_failures_total",
			Help: "Outbound mails the transport failed to accept",
		}),
		RequestersTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "procuration_requesters_registered_total",
			Help: "Identities added to the requesters list",
		}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "procuration_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// ObserveTransition records the outcome and duration of a transition.
// Call with time.Now() captured at the start of the transition.
func (m *Metrics) ObserveTransition(transition, outcome string, start time.Time) {
	m.TransitionsTotal.WithLabelValues(transition, outcome).Inc()
	m.TransitionDuration.WithLabelValues(transition).Observe(time.Since(start).Seconds())
}

// IncrementThrottleRejections records a throttled submission.
func (m *Metrics) IncrementThrottleRejections() {
	m.ThrottleRejections.Inc()
}

// IncrementMailFailures records a failed mail send.
func (m *Metrics) IncrementMailFailures() {
	m.MailFailures.Inc()
}

// IncrementRequesters records a newly registered identity.
func (m *Metrics) IncrementRequesters() {
	m.RequestersTotal.Inc()
}

// ObserveHTTPRequest records the latency of a served request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	m.HTTPLatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
