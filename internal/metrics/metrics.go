// Package metrics defines the Prometheus instruments exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled HTTP requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backoffice_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// StoreOperations counts store operations per backend and collection.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_store_operations_total",
			Help: "Total number of store operations",
		},
		[]string{"backend", "collection", "operation"},
	)

	// StoreDegradedReads counts reads that fell back to an empty list or a
	// default value because the stored payload was missing or malformed.
	StoreDegradedReads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backoffice_store_degraded_reads_total",
			Help: "Total number of reads degraded to a default value",
		},
	)

	// InventoryDrift counts inventory status corrections applied by the
	// reconciliation pass.
	InventoryDrift = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backoffice_inventory_drift_corrections_total",
			Help: "Total number of inventory statuses corrected by reconciliation",
		},
	)
)
