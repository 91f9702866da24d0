// Package metrics defines the custom Prometheus metrics for the identity
// service. It is the single source of truth for metric names, labels, and
// help strings; promauto registers everything with the default registry at
// package init.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// LoginsTotal counts authentication attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts minted tokens.
// Label:
//   - type: "access" or "refresh"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of tokens issued, by token type.",
	},
	[]string{"type"},
)

// TokenVerificationsTotal counts verification outcomes.
// Label:
//   - result: "valid", "expired", "invalid", or "malformed"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of token verifications, by result.",
	},
	[]string{"result"},
)

// UsersCreatedTotal counts successful user registrations.
var UsersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created.",
	},
)

// RoleAssignmentsTotal counts successful role assignments.
var RoleAssignmentsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_assignments_total",
		Help:      "Total number of roles assigned to users.",
	},
)

// RefreshDuration measures the refresh exchange end-to-end, including the
// store lookup that re-reads the subject's roles.
// Label:
//   - result: "success" or "failure"
var RefreshDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "token_refresh_duration_seconds",
		Help:      "Duration of refresh-token exchanges.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// RefreshTimer times one refresh exchange.
type RefreshTimer struct {
	start time.Time
}

func NewRefreshTimer() *RefreshTimer {
	return &RefreshTimer{start: time.Now()}
}

func (t *RefreshTimer) Observe(result string) {
	RefreshDuration.WithLabelValues(result).Observe(time.Since(t.start).Seconds())
}
