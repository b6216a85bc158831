// Package metrics defines and registers all custom Prometheus metrics for the
// DevCamper API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry on import and are
// served by the /metrics endpoint alongside the echoprometheus HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "devcamper"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts account lifecycle events.
// Label:
//   - event: "register", "login", "login_failed", "forgot_password", "reset_password"
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication events, by event.",
	},
	[]string{"event"},
)

// RateLimitedTotal counts requests rejected by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected with 429.",
	},
)

// ── Catalogue metrics ─────────────────────────────────────────────────────────

// ResourcesCreatedTotal counts created bootcamps, courses and reviews.
// Label:
//   - resource: "bootcamp", "course", "review"
var ResourcesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resources_created_total",
		Help:      "Total number of resources created, by resource type.",
	},
	[]string{"resource"},
)

// PhotosUploadedTotal counts accepted bootcamp photos.
var PhotosUploadedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photos_uploaded_total",
		Help:      "Total number of bootcamp photos stored.",
	},
)

// ── Aggregate metrics ─────────────────────────────────────────────────────────

// AggregatesRecalculatedTotal counts successful averageCost/averageRating
// recalculations.
var AggregatesRecalculatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "aggregates_recalculated_total",
		Help:      "Total number of bootcamp aggregate recalculations that succeeded.",
	},
)

// AggregateErrorsTotal counts recalculations that failed or were dropped.
// Label:
//   - reason: "recalculate_failed", "queue_full"
var AggregateErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "aggregate_errors_total",
		Help:      "Total number of aggregate recalculations that failed or were dropped.",
	},
	[]string{"reason"},
)

// AggregateQueueDepth tracks the number of recalculations waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AggregateQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "aggregate_queue_depth",
		Help:      "Current number of recalculations pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AggregateDuration measures a single recalculation.
var AggregateDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregate_duration_seconds",
		Help:      "Duration of a bootcamp aggregate recalculation.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Integration metrics ───────────────────────────────────────────────────────

// GeocodeLookupsTotal counts geocoding requests.
// Label:
//   - result: "hit" (served from cache), "miss" (provider call), "error"
var GeocodeLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geocode_lookups_total",
		Help:      "Total number of geocoding lookups, by result.",
	},
	[]string{"result"},
)

// EmailsSentTotal counts outgoing email attempts.
// Label:
//   - result: "sent" or "error"
var EmailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Total number of outgoing emails, by result.",
	},
	[]string{"result"},
)
