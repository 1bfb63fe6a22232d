// Package monitoring exposes Prometheus collectors and Sentry error reporting.
package monitoring

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	queriesTotal    *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec

	leadsTotal            *prometheus.CounterVec
	registrationsTotal    *prometheus.CounterVec
	webhooksTotal         *prometheus.CounterVec
	appointmentsGenerated prometheus.Counter
	outboxTotal           *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total database queries by operation",
		}, []string{"op"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"op"}),
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_leads_created_total",
			Help: "Leads captured by source",
		}, []string{"source"}),
		registrationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_event_registrations_total",
			Help: "Event registrations by initial status",
		}, []string{"status"}),
		webhooksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_payment_webhooks_total",
			Help: "Payment webhooks by outcome",
		}, []string{"outcome"}),
		appointmentsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studio_recurring_appointments_generated_total",
			Help: "Appointments created by recurring expansion",
		}),
		outboxTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_outbox_deliveries_total",
			Help: "Outbox delivery attempts by channel and result",
		}, []string{"channel", "result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal, m.requestDuration, m.queriesTotal, m.queryDuration,
		m.leadsTotal, m.registrationsTotal, m.webhooksTotal, m.appointmentsGenerated, m.outboxTotal,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveQuery records one database call. Satisfies storage.QueryObserver.
func (m *Metrics) ObserveQuery(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.queriesTotal.WithLabelValues(op).Inc()
	m.queryDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	route := RouteLabel(path)
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// LeadCreated counts a captured lead.
func (m *Metrics) LeadCreated(source string) {
	if m == nil {
		return
	}
	if source == "" {
		source = "unknown"
	}
	m.leadsTotal.WithLabelValues(source).Inc()
}

// RegistrationCreated counts an event registration.
func (m *Metrics) RegistrationCreated(status string) {
	if m == nil {
		return
	}
	m.registrationsTotal.WithLabelValues(status).Inc()
}

// WebhookHandled counts a payment webhook by outcome (applied, rejected, ignored).
func (m *Metrics) WebhookHandled(outcome string) {
	if m == nil {
		return
	}
	m.webhooksTotal.WithLabelValues(outcome).Inc()
}

// AppointmentsGenerated adds n recurring appointments.
func (m *Metrics) AppointmentsGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.appointmentsGenerated.Add(float64(n))
}

// OutboxDelivery counts a delivery attempt.
func (m *Metrics) OutboxDelivery(channel, result string) {
	if m == nil {
		return
	}
	m.outboxTotal.WithLabelValues(channel, result).Inc()
}

// RouteLabel collapses identifier path segments so labels stay low-cardinality.
func RouteLabel(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if looksLikeID(p) {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func looksLikeID(seg string) bool {
	if len(seg) >= 16 && strings.Count(seg, "-") >= 2 {
		return true
	}
	if seg == "" {
		return false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
