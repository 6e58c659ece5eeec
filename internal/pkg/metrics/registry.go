package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bridge handoff metrics
var (
	// TokensIssued tracks tokens minted by the issuing side
	TokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossgate_tokens_issued_total",
			Help: "Total bridge tokens issued, by issuing system tag",
		},
		[]string{"system"},
	)

	// TokenVerifications tracks verification outcomes on the consuming side
	TokenVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossgate_token_verifications_total",
			Help: "Total bridge token verifications by outcome (ok, malformed_token, bad_signature, malformed_payload, expired)",
		},
		[]string{"outcome"},
	)

	// AccountsProvisioned tracks accounts auto-created from bridge claims
	AccountsProvisioned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossgate_accounts_provisioned_total",
			Help: "Total board accounts auto-provisioned, by issuing system tag",
		},
		[]string{"system"},
	)

	// SessionsEstablished tracks board sessions created from a valid handoff
	SessionsEstablished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crossgate_sessions_established_total",
			Help: "Total board sessions established via blind auth",
		},
	)

	// SessionsDestroyed tracks board sessions torn down, by trigger
	SessionsDestroyed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossgate_sessions_destroyed_total",
			Help: "Total board sessions destroyed, by trigger (logout, external_logout, expired)",
		},
		[]string{"trigger"},
	)
)

// Session store metrics
var (
	// StoreOperations tracks session store operations
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossgate_session_store_operations_total",
			Help: "Total session store operations by backend, operation, and status",
		},
		[]string{"backend", "operation", "status"},
	)

	// StoreDuration tracks session store operation latency
	StoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "crossgate_session_store_duration_ms",
			Help:                            "Session store operation duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"backend", "operation"},
	)
)

// Database/Repository metrics
var (
	// DBOperations tracks total database operations
	DBOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossgate_db_operations_total",
			Help: "Total database operations by repository, operation, and status",
		},
		[]string{"repo", "operation", "status"},
	)

	// DBDuration tracks database operation latency
	DBDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "crossgate_db_operation_duration_ms",
			Help:                            "Database operation duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"repo", "operation"},
	)

	// DBErrors tracks database errors by type
	DBErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossgate_db_errors_total",
			Help: "Total database errors by repository, operation, and error type",
		},
		[]string{"repo", "operation", "error_type"},
	)
)

// HTTP metrics
var (
	// HTTPRequests tracks HTTP requests by service, route, and status class
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossgate_http_requests_total",
			Help: "Total HTTP requests by service, route, and status",
		},
		[]string{"service", "route", "status"},
	)

	// HTTPDuration tracks HTTP request latency
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "crossgate_http_request_duration_ms",
			Help:                            "HTTP request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"service", "route"},
	)
)
