// Package metrics defines the service's own Prometheus metrics. HTTP request
// metrics come from the echoprometheus middleware; the counters here cover
// what a request log cannot aggregate cheaply.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clicktracker"

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "rate_limited" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionsDestroyedTotal counts successful logouts.
var SessionsDestroyedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_destroyed_total",
		Help:      "Total number of sessions destroyed by logout.",
	},
)

// ClicksRecordedTotal counts clicks persisted by /save-click.
var ClicksRecordedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clicks_recorded_total",
		Help:      "Total number of map clicks recorded.",
	},
)

// AccessDeniedTotal counts rejected requests.
// Label:
//   - reason: "unauthorized" or "forbidden"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests rejected for missing identity or insufficient role.",
	},
	[]string{"reason"},
)

// UsersRegisteredTotal counts accounts created through /register.
// Label:
//   - role: "admin" or "user"
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of accounts created through registration, by role.",
	},
	[]string{"role"},
)

func RoleLabel(isAdmin bool) string {
	if isAdmin {
		return "admin"
	}
	return "user"
}
