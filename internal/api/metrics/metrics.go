// Package metrics defines the Prometheus metrics of the fleet console and
// its development backend. Metrics register with the default registry on
// package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fleet_console"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state changes.
// Label:
//   - state: the state entered (anonymous, active, pending_confirmation)
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by state entered.",
	},
	[]string{"state"},
)

// LoginAttemptsTotal counts explicit logins.
// Label:
//   - result: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// IdlePromptsResolvedTotal counts answers to the idle confirmation prompt.
// Label:
//   - choice: "continue" or "end"
var IdlePromptsResolvedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idle_prompts_resolved_total",
		Help:      "Total number of idle confirmation prompts resolved, by choice.",
	},
	[]string{"choice"},
)

// ActivityEventsTotal counts activity events accepted into the feed.
// Label:
//   - kind: pointermove, keydown, click or scroll
var ActivityEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_events_total",
		Help:      "Total number of user activity events accepted.",
	},
	[]string{"kind"},
)

// ── Gate metrics ──────────────────────────────────────────────────────────────

// GateDecisionsTotal counts route authorization decisions.
// Labels:
//   - outcome: "allow", "redirect" or "loading"
//   - path: the route requested
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of route authorization decisions.",
	},
	[]string{"outcome", "path"},
)

// SnapshotSubscribers tracks the open websocket snapshot streams.
var SnapshotSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "snapshot_subscribers",
		Help:      "Current number of websocket clients streaming session snapshots.",
	},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendTokensIssuedTotal counts tokens issued by the development auth API.
// Label:
//   - rol: role of the authenticated user
var BackendTokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_tokens_issued_total",
		Help:      "Total number of tokens issued by the development auth API.",
	},
	[]string{"rol"},
)
