package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	adminRequestsTotal  *prometheus.CounterVec
	adminLatencySeconds *prometheus.HistogramVec
	adminErrorsTotal    *prometheus.CounterVec
	moderationChecks    *prometheus.CounterVec
	lifecycleTotal      *prometheus.CounterVec
	auditDropsTotal     prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		moderationChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moderation_checks_total",
			Help: "Moderation outcomes per scene.",
		}, []string{"scene", "outcome"})

		lifecycleTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_transitions_total",
			Help: "Successful content lifecycle transitions.",
		}, []string{"target_type", "transition"})

		auditDropsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_log_drops_total",
			Help: "Audit entries that could not be persisted and were dropped.",
		})

		prometheus.MustRegister(
			adminRequestsTotal, adminLatencySeconds, adminErrorsTotal,
			moderationChecks, lifecycleTotal, auditDropsTotal,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// ModerationChecks exposes the moderation outcome counter.
func ModerationChecks() *prometheus.CounterVec {
	RegisterMetrics()
	return moderationChecks
}

// LifecycleTransitions exposes the lifecycle transition counter.
func LifecycleTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return lifecycleTotal
}

// AuditDrops exposes the dropped audit entry counter.
func AuditDrops() prometheus.Counter {
	RegisterMetrics()
	return auditDropsTotal
}
