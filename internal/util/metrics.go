package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogSnapshotsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_snapshots_applied_total",
		Help: "Total number of remote catalog snapshots that replaced the catalog",
	})

	CatalogFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_fallbacks_total",
		Help: "Total number of times the catalog reverted to the bundled fallback list",
	}, []string{"reason"})

	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_products",
		Help: "Number of products in the current catalog snapshot",
	})

	CatalogMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_mutations_total",
		Help: "Total number of catalog mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	RemoteWriteLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_remote_write_latency_seconds",
		Help:    "Latency of remote catalog writes",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"operation"})

	CartPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Total number of failed cart ledger writes",
	})

	CartRehydrateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_rehydrate_failures_total",
		Help: "Total number of cart ledger rehydrations that hit a read fault or a corrupt record",
	}, []string{"reason"})

	SessionEvictionsDeferred = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_evictions_deferred_total",
		Help: "Evictions skipped because the oldest session was used recently",
	})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of completed checkouts",
	})

	CuratorRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_requests_total",
		Help: "Total number of curator chat requests",
	}, []string{"outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
