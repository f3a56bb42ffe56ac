// Package metrics defines all custom Prometheus metrics for the rider
// dispatch API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register themselves with the default registry at
// init; the /metrics endpoint is wired by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dispatch"

// PresenceEventsTotal counts status events appended to the presence log.
// Label:
//   - status: the recorded status token (e.g. "available", "delivery")
var PresenceEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "presence_events_total",
		Help:      "Total number of presence events appended, by status.",
	},
	[]string{"status"},
)

// QueueRequestsTotal counts dispatch queue reads by the requester's
// resulting state.
// Label:
//   - self_status: the requesting rider's reduced status at read time
var QueueRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "queue_requests_total",
		Help:      "Total number of dispatch queue reads, by the requester's status.",
	},
	[]string{"self_status"},
)

// ImpersonationsTotal counts successful identity delegations.
// Labels:
//   - actor_role: the impersonating role
//   - target_role: the impersonated role
var ImpersonationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "impersonations_total",
		Help:      "Total number of successful impersonations, by actor and target role.",
	},
	[]string{"actor_role", "target_role"},
)

// LocationPingsTotal counts GPS samples accepted for asynchronous processing.
var LocationPingsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_pings_total",
		Help:      "Total number of rider location pings accepted.",
	},
)

// LocationQueueDepth tracks pending pings per location worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var LocationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "location_queue_depth",
		Help:      "Current number of location pings pending in each worker channel.",
	},
	[]string{"worker_id"},
)
