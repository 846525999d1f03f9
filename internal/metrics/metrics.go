package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scanner metrics
var (
	ScannerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_scanner_operations_total",
			Help: "Total number of scanner operations",
		},
		[]string{"operation", "status"},
	)

	ScannerOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_scanner_operation_duration_seconds",
			Help:    "Scanner operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	ScannerItemsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_scanner_items_returned",
			Help:    "Number of items returned by scanner operations",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		},
		[]string{"operation"},
	)

	ScannerEntriesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_scanner_entries_skipped_total",
			Help: "Directory entries excluded from results",
		},
		[]string{"reason"},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_attempts_total",
			Help: "Retries performed after a stale file handle",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_failures_total",
			Help: "Operations that still failed after all retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_stale_errors_total",
			Help: "ESTALE errors observed",
		},
		[]string{"operation"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_filesystem_operation_duration_seconds",
			Help:    "Duration of retried filesystem operations, including backoff",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation"},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_db_transaction_duration_seconds",
			Help:    "Database transaction duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"outcome"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_catalog_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Snapshot cache metrics
var (
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_cache_requests_total",
			Help: "Snapshot cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	CachePutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_cache_puts_total",
			Help: "Snapshot cache writes by status",
		},
		[]string{"status"},
	)

	CacheSnapshotItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_catalog_cache_snapshot_items",
			Help:    "Number of items in stored snapshots",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		},
	)

	CachedDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_cached_directories",
			Help: "Directories with a stored snapshot",
		},
	)
)

// Tag metrics
var (
	TagOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_tag_operations_total",
			Help: "Tag store operations by status",
		},
		[]string{"operation", "status"},
	)

	TaggedPaths = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_tagged_paths",
			Help: "Paths currently tagged across all owners",
		},
	)

	TagOwners = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_tag_owners",
			Help: "Number of tag owners",
		},
	)
)

// Transfer buffer metrics
var (
	TransferLiveHandles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_transfer_live_handles",
			Help: "Transfer buffers created and not yet destroyed",
		},
	)

	TransferLiveBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_transfer_live_bytes",
			Help: "Bytes reserved by live transfer buffers",
		},
	)

	TransferAllocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_transfer_allocations_total",
			Help: "Transfer buffer allocations and growths by status",
		},
		[]string{"status"},
	)

	TransferPayloadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_catalog_transfer_payload_bytes",
			Help:    "Bytes written to a transfer buffer before hand-off",
			Buckets: prometheus.ExponentialBuckets(64, 4, 10),
		},
	)

	TransferHandleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_transfer_handle_errors_total",
			Help: "Rejected handle lookups by reason",
		},
		[]string{"reason"}, // "unknown", "released", "short_buffer"
	)
)

// Catalog controller metrics
var (
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_controller_requests_total",
			Help: "Controller requests by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: "started", "dropped", "refused"
	)

	CatalogOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_controller_operation_duration_seconds",
			Help:    "Duration of background controller operations",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"operation"},
	)

	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_watcher_events_total",
			Help: "Filesystem change notifications handled by the watcher",
		},
		[]string{"op"},
	)
)
