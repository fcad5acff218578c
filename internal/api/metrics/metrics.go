// Package metrics defines and registers all custom Prometheus metrics for the
// identity store. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package init
// through promauto; importing the package is enough.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/99minutos/identity-store/internal/core/domain"
)

const namespace = "identity"

// ── Storage metrics ───────────────────────────────────────────────────────────

// StoreOperationsTotal counts collection operations.
// Labels:
//   - collection: "users" or "roles"
//   - op: insert, update, delete, find_one, find, ensure_index
//   - result: see ResultLabel
var StoreOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_operations_total",
		Help:      "Total number of document collection operations, by outcome.",
	},
	[]string{"collection", "op", "result"},
)

// StoreOperationDuration measures round trips to the document database.
var StoreOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_operation_duration_seconds",
		Help:      "Duration of document collection operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"collection", "op"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "ok", "duplicate_key", "invalid_argument", "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of account registrations, by outcome.",
	},
	[]string{"result"},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "ok", "invalid_credentials", "locked", "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// ── Membership metrics ────────────────────────────────────────────────────────

// MembershipChangesTotal counts role membership changes applied by the dispatcher.
// Labels:
//   - op: "add" or "remove"
//   - result: see ResultLabel
var MembershipChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "membership_changes_total",
		Help:      "Total number of queued role membership changes applied.",
	},
	[]string{"op", "result"},
)

// MembershipQueueDepth tracks pending changes per dispatcher worker.
var MembershipQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "membership_queue_depth",
		Help:      "Current number of membership changes pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ResultLabel collapses an error into a low-cardinality label value.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrDuplicateKey):
		return "duplicate_key"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrCanceled):
		return "canceled"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
