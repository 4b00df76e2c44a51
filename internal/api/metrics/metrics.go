// Package metrics defines and registers all custom Prometheus metrics for
// the ops API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry at package
// init via promauto; the /metrics route exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ops"

// OrdersCreatedTotal counts newly created orders.
// Label:
//   - category: maintenance, repair, installation, consultation, subscription, other
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created, by category.",
	},
	[]string{"category"},
)

// OrderStatusChangesTotal counts sanctioned status transitions.
// Label:
//   - status: the status the order was moved to
var OrderStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_changes_total",
		Help:      "Total number of order status transitions, by target status.",
	},
	[]string{"status"},
)

// EmailsSentTotal counts transactional email attempts.
// Labels:
//   - kind: "welcome" or "password_reset"
//   - result: "ok" or "error"
var EmailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Total number of transactional email attempts, by kind and result.",
	},
	[]string{"kind", "result"},
)

// LoginAttemptsTotal counts login outcomes.
// Label:
//   - result: "ok" or "failed"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
