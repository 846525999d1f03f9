package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, op := range []string{"list", "search"} {
		ScannerOperationsTotal.WithLabelValues(op, "success")
		ScannerOperationsTotal.WithLabelValues(op, "error")
		ScannerOperationsTotal.WithLabelValues(op, "canceled")
		ScannerOperationDuration.WithLabelValues(op)
		ScannerItemsReturned.WithLabelValues(op)
	}
	for _, reason := range []string{"hidden", "unreadable", "empty_dir", "reserved", "extension", "stat_error"} {
		ScannerEntriesSkipped.WithLabelValues(reason)
	}

	for _, op := range []string{"stat", "readdir"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
		FilesystemRetryDuration.WithLabelValues(op)
	}

	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}
	for _, outcome := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(outcome)
	}
	dbOps := []string{
		"cache_get", "cache_put", "cache_clear", "cache_clear_all", "cache_paths",
		"tag_add_owner", "tag_remove_owner", "tag_rename_owner", "tag_owners",
		"tag_put_entry", "tag_delete_entry", "tag_entries", "tag_paths", "tag_import",
	}
	for _, op := range dbOps {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, result := range []string{"hit", "miss", "error"} {
		CacheRequestsTotal.WithLabelValues(result)
	}
	for _, status := range []string{"success", "error"} {
		CachePutsTotal.WithLabelValues(status)
		TransferAllocationsTotal.WithLabelValues(status)
	}

	for _, op := range []string{"add_owner", "remove_owner", "rename_owner", "tag", "untag", "import", "export"} {
		TagOperationsTotal.WithLabelValues(op, "success")
		TagOperationsTotal.WithLabelValues(op, "error")
	}

	for _, reason := range []string{"unknown", "released", "short_buffer"} {
		TransferHandleErrors.WithLabelValues(reason)
	}

	for _, op := range []string{"load", "refresh", "search", "fix_times"} {
		for _, outcome := range []string{"started", "dropped"} {
			CatalogRequestsTotal.WithLabelValues(op, outcome)
		}
		CatalogOperationDuration.WithLabelValues(op)
	}
	CatalogRequestsTotal.WithLabelValues("up", "refused")

	for _, op := range []string{"create", "remove", "rename", "write", "chmod"} {
		WatcherEventsTotal.WithLabelValues(op)
	}
}
