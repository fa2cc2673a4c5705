// Package metrics defines and registers all custom Prometheus metrics for
// the LinguaMeet API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init via
// promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "linguameet"

// ── Relationship metrics ──────────────────────────────────────────────────────

// FriendRequestsCreatedTotal counts successfully proposed friend requests.
var FriendRequestsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "friend_requests_created_total",
		Help:      "Total number of friend requests created.",
	},
)

// FriendRequestsAcceptedTotal counts accepted friend requests.
var FriendRequestsAcceptedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "friend_requests_accepted_total",
		Help:      "Total number of friend requests accepted.",
	},
)

// RecommendationCacheTotal counts recommendation cache lookups.
// Label:
//   - result: "hit" (served from cache) or "miss" (queried the store)
var RecommendationCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendation_cache_total",
		Help:      "Total number of recommendation cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// SignupsTotal counts successfully created accounts.
var SignupsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of accounts created.",
	},
)

// ── Chat sync metrics ─────────────────────────────────────────────────────────

// ProfileSyncTotal counts best-effort profile pushes to the external
// communications platform.
// Label:
//   - result: "ok" or "error"
var ProfileSyncTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_sync_total",
		Help:      "Total number of chat profile sync attempts, labelled by result.",
	},
	[]string{"result"},
)
