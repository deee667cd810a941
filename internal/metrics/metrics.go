// Package metrics holds the Prometheus collectors for the store and its
// collaborators. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all custom Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	Mutations       *prometheus.CounterVec
	PersistWrites   *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	LoginAttempts   *prometheus.CounterVec
	AuditEntries    *prometheus.CounterVec
	AIRequests      *prometheus.CounterVec
	AILatency       prometheus.Histogram
	Backups         *prometheus.CounterVec
}

// New creates the collectors on a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskflow_store_mutations_total",
			Help: "Total number of store mutations by operation",
		}, []string{"operation"}),

		PersistWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskflow_persist_writes_total",
			Help: "Total number of collection writes by key",
		}, []string{"key"}),

		PersistFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskflow_persist_failures_total",
			Help: "Total number of failed collection writes by key",
		}, []string{"key"}),

		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskflow_login_attempts_total",
			Help: "Total number of login attempts by result",
		}, []string{"result"}), // result: "success", "upgraded" or "failed"

		AuditEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskflow_audit_entries_total",
			Help: "Total number of audit log entries by action",
		}, []string{"action"}),

		AIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskflow_ai_requests_total",
			Help: "Total number of text generation requests by capability and result",
		}, []string{"capability", "result"}),

		AILatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskflow_ai_request_duration_seconds",
			Help:    "Text generation latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}),

		Backups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskflow_backups_total",
			Help: "Total number of snapshot backups by result",
		}, []string{"result"}),
	}
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordMutation records a store mutation.
func (m *Metrics) RecordMutation(operation string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(operation).Inc()
}

// RecordPersist records a collection write and whether it failed.
func (m *Metrics) RecordPersist(key string, err error) {
	if m == nil {
		return
	}
	m.PersistWrites.WithLabelValues(key).Inc()
	if err != nil {
		m.PersistFailures.WithLabelValues(key).Inc()
	}
}

// RecordLogin records a login attempt.
func (m *Metrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

// RecordAudit records an audit log entry.
func (m *Metrics) RecordAudit(action string) {
	if m == nil {
		return
	}
	m.AuditEntries.WithLabelValues(action).Inc()
}

// RecordAIRequest records a text generation call.
func (m *Metrics) RecordAIRequest(capability, result string, seconds float64) {
	if m == nil {
		return
	}
	m.AIRequests.WithLabelValues(capability, result).Inc()
	m.AILatency.Observe(seconds)
}

// RecordBackup records a snapshot backup run.
func (m *Metrics) RecordBackup(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failed"
	}
	m.Backups.WithLabelValues(result).Inc()
}
