// Package metrics exposes Prometheus instrumentation for the ledger
// engine and its RPC surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExpensesRecorded counts expenses appended to any group ledger.
	ExpensesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_expenses_recorded_total",
		Help: "Number of expenses appended to group ledgers.",
	})

	// PaymentsRecorded counts payments by kind (payment/settlement).
	PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitledger_payments_recorded_total",
		Help: "Number of payments appended to group ledgers.",
	}, []string{"kind"})

	// GroupsSettled counts completed group settlements, including
	// no-op settlements of already balanced groups.
	GroupsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_groups_settled_total",
		Help: "Number of group settlements performed.",
	})

	// SimplifyDuration observes how long debt simplification takes.
	SimplifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "splitledger_simplify_duration_seconds",
		Help:    "Duration of debt simplification per summary request.",
		Buckets: prometheus.DefBuckets,
	})

	// RPCRequests counts RPC calls by procedure and result code.
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitledger_rpc_requests_total",
		Help: "Number of RPC requests by procedure and Connect code.",
	}, []string{"procedure", "code"})
)
