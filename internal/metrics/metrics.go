// Package metrics defines the Prometheus collectors for the pool ledger
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PoolsCreated counts successful pool creations.
	PoolsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chitpool_pools_created_total",
		Help: "Number of pools created.",
	})

	// PoolJoins counts successful joins. The creator's seat at creation
	// time is not a join.
	PoolJoins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chitpool_pool_joins_total",
		Help: "Number of successful pool joins.",
	})

	// LedgerRejections counts rejected create/join attempts by error code.
	LedgerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chitpool_ledger_rejections_total",
		Help: "Number of rejected ledger mutations, labelled by error code.",
	}, []string{"code"})

	// RequestDuration observes HTTP request latency per route template.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chitpool_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route, and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
