package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Guard denial reasons.
const (
	DenyNoSession = "no_session"
	DenyExpired   = "trial_expired"
	DenyNotAdmin  = "not_admin"
	DenyRateLimit = "rate_limited"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	guardDenials    *prometheus.CounterVec
	logins          *prometheus.CounterVec
}

// New registers the collectors on reg. Tests pass a fresh registry so
// repeated construction does not collide.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buzztub_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "buzztub_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"route"}),
		guardDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buzztub_guard_denials_total",
			Help: "Requests denied by the access guard, by reason",
		}, []string{"reason"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buzztub_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	m.requestsTotal.WithLabelValues(route, method, status).Inc()
	m.requestDuration.WithLabelValues(route).Observe(seconds)
}

func (m *Metrics) GuardDenied(reason string) {
	m.guardDenials.WithLabelValues(reason).Inc()
}

func (m *Metrics) Login(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
