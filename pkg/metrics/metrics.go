// Package metrics defines and registers all custom Prometheus metrics for the
// delivery dispatch API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Collectors are registered with the default registry through promauto on
// package initialisation and served by the echoprometheus handler at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "delivery"

// ── Pricing & shipments ───────────────────────────────────────────────────────

// QuotesTotal counts quote computations.
// Label:
//   - result: "ok" or "no_zone"
var QuotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_total",
		Help:      "Total number of delivery quotes computed, by result.",
	},
	[]string{"result"},
)

// ShipmentsCreatedTotal counts newly created shipments.
// Label:
//   - delivery_type: STANDARD, EXPRESS, SAME_DAY, NEXT_DAY or SCHEDULED
var ShipmentsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shipments_created_total",
		Help:      "Total number of shipments created, by delivery type.",
	},
	[]string{"delivery_type"},
)

// ── Dispatch ──────────────────────────────────────────────────────────────────

// DispatchTotal counts dispatch attempts.
// Label:
//   - result: "assigned", "no_agent", "conflict" or "error"
var DispatchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_total",
		Help:      "Total number of agent dispatch attempts, by result.",
	},
	[]string{"result"},
)

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// TransitionsTotal counts applied shipment transitions.
// Labels:
//   - from, to: shipment statuses
var TransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Total number of shipment status transitions applied.",
	},
	[]string{"from", "to"},
)

// TransitionErrorsTotal counts rejected transitions.
// Label:
//   - reason: "invalid_transition", "forbidden", "conflict", "validation" or "error"
var TransitionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transition_errors_total",
		Help:      "Total number of shipment status transitions rejected.",
	},
	[]string{"reason"},
)

// AgentEffectsTotal counts agent bookkeeping outcomes.
// Label:
//   - result: "applied" or "pending"
var AgentEffectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agent_effects_total",
		Help:      "Total number of agent side effects settled or left pending.",
	},
	[]string{"result"},
)

// ── Location tracking ─────────────────────────────────────────────────────────

// LocationReportsTotal counts processed location reports.
// Label:
//   - result: "applied", "duplicate", "stale", "error" or "queue_full"
var LocationReportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_reports_total",
		Help:      "Total number of agent location reports, by result.",
	},
	[]string{"result"},
)

// LocationQueueDepth tracks the reports waiting in each ingestion worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var LocationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "location_queue_depth",
		Help:      "Current number of location reports pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// LocationProcessingDuration measures how long a single report takes to apply.
var LocationProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "location_processing_duration_seconds",
		Help:      "Duration of location report processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// TrackingSubscribers tracks open live-tracking subscriptions.
var TrackingSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tracking_subscribers",
		Help:      "Current number of live tracking subscriptions.",
	},
)

// TrackingUpdatesDropped counts updates skipped for slow subscribers.
var TrackingUpdatesDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracking_updates_dropped_total",
		Help:      "Total number of tracking updates dropped because a subscriber was full.",
	},
)
