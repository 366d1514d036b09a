// Package metrics defines and registers all custom Prometheus metrics for the
// Ambo operations backend. It is the single source of truth for metric names,
// labels, and help strings. Metrics are registered with the default registry
// on import via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ambo"

// ── Payment metrics ───────────────────────────────────────────────────────────

// PaymentsInitiatedTotal counts checkout sessions opened.
// Label:
//   - package_type: the selected package (e.g. "AMBO CLASSIC", "CUSTOM")
var PaymentsInitiatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_initiated_total",
		Help:      "Total number of payment checkout sessions opened, by package type.",
	},
	[]string{"package_type"},
)

// PaymentsConfirmedTotal counts applied confirmation transitions.
// Label:
//   - path: "webhook" or "verify"
var PaymentsConfirmedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_confirmed_total",
		Help:      "Total number of payments confirmed, by confirmation path.",
	},
	[]string{"path"},
)

// PaymentsReconciliationTotal counts success events arriving for payments
// already in a terminal FAILED/CANCELLED state.
var PaymentsReconciliationTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_reconciliation_total",
		Help:      "Total number of payments flagged for manual reconciliation.",
	},
)

// ── Webhook metrics ───────────────────────────────────────────────────────────

// WebhookEventsTotal counts inbound gateway events.
// Label:
//   - result: "confirmed", "already_processed", "rejected" or "error"
var WebhookEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Total number of inbound gateway webhook events, by processing result.",
	},
	[]string{"result"},
)

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayRequestDuration measures outbound gateway call latency.
// Labels:
//   - operation: "initialize" or "verify"
//   - outcome: "ok" or "error"
var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of outbound payment gateway HTTP calls.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"operation", "outcome"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsQueueDepth tracks the current number of notifications waiting
// in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationsDeliveredTotal counts delivery attempts by outcome.
// Label:
//   - outcome: "sent" or "error"
var NotificationsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_delivered_total",
		Help:      "Total number of notification delivery attempts, by outcome.",
	},
	[]string{"outcome"},
)
