// Package metrics holds the Prometheus collectors shared by the API server
// and the session layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dragonlog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dragonlog_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dragonlog_http_active_requests",
			Help: "Current number of active HTTP requests",
		},
	)

	// Checklist Metrics
	ChecklistOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dragonlog_checklist_operations_total",
			Help: "Checklist operations by kind",
		},
		[]string{"operation"}, // materialized, reconciled, toggle, toggle_failed
	)

	// Authentication Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dragonlog_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"status", "type"}, // success/failure, login/register
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dragonlog_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"},
	)
)

// TrackChecklistOperation increments the checklist operation counter
func TrackChecklistOperation(operation string) {
	ChecklistOperationsTotal.WithLabelValues(operation).Inc()
}

// TrackAuthAttempt records an authentication attempt
func TrackAuthAttempt(status, authType string) {
	AuthAttempts.WithLabelValues(status, authType).Inc()
}

// TrackError increments the error counter by type
func TrackError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}
