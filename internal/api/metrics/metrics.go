// Package metrics defines the custom Prometheus collectors of the user
// administration API. HTTP request metrics come from echoprometheus; the
// counters here record domain outcomes.
//
// Collectors register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "useradmin"

// UsersCreatedTotal counts regular users created through the API.
var UsersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of regular users created.",
	},
)

// UsersUpdatedTotal counts successful edits of regular users.
var UsersUpdatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_updated_total",
		Help:      "Total number of regular users updated.",
	},
)

// UsersDeletedTotal counts delete requests by outcome.
// Label:
//   - result: "deleted" or "token_mismatch"
var UsersDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_deleted_total",
		Help:      "Total number of delete requests, labelled by result.",
	},
	[]string{"result"},
)

// AdminGuardDeniedTotal counts operations refused because they targeted the
// admin account.
// Label:
//   - action: "view", "edit", "delete"
var AdminGuardDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_guard_denied_total",
		Help:      "Total number of operations refused because the target is the admin account.",
	},
	[]string{"action"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)
