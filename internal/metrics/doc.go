// Package metrics provides Prometheus instrumentation for the media catalog.
//
// All metrics are prefixed with "media_catalog_" and registered at package
// init through promauto, so importing the package is enough to expose them.
//
// # Metric Categories
//
// ## Scanner Metrics
//
//   - ScannerOperationsTotal: Counter of list/search operations by status
//   - ScannerOperationDuration: Histogram of operation duration
//   - ScannerItemsReturned: Histogram of result sizes
//   - ScannerEntriesSkipped: Counter of filtered or failed entries by reason
//
// ## Filesystem Metrics
//
// NFS stale-handle retry behaviour for stat and readdir.
//
// ## Database Metrics
//
//   - DBQueryTotal / DBQueryDuration: per-operation query accounting
//   - DBTransactionDuration: transaction duration by outcome
//   - DBConnectionsOpen / DBSizeBytes: refreshed by the Collector
//
// ## Cache, Tag, Transfer and Catalog Metrics
//
// Hit rates of the snapshot cache, tag mutations, live transfer handles and
// bytes, and requests dropped by the controller's single-flight gate.
//
// # Exposition
//
// Serve starts an HTTP listener with /metrics and /healthz routes.
package metrics
