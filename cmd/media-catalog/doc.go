// Package main provides the entry point for media-catalog.
//
// media-catalog browses local media folders. It lists directories with folders
// first and files newest first, searches names below a directory, remembers
// the last listing of every directory in SQLite so revisits render at once,
// and keeps named collections of tagged files and folders.
//
// # Commands
//
//   - browse: interactive terminal browser
//   - list, search: one-shot listings, as columns or JSON
//   - tags: owners, tagging, backups, opening tagged files
//   - cache: inspect or drop directory snapshots
//   - gallery: build and receive the viewer hand-off for a media file
//   - fix-times: set folder times from their newest file
//   - version: build information
//
// # Configuration
//
// Settings come from config.yaml (current directory, then
// $XDG_CONFIG_HOME/media-catalog, then ~/.media-catalog), overridden by MEDIA_CATALOG_* environment
// variables. STORAGE_ROOT, DATABASE_DIR and SCAN_WORKERS are also read
// without the prefix.
//
//   - LOG_LEVEL: debug, info, warn or error
//   - LOG_FILE: also write logs to this rotated file
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: Go heap limit; the gallery
//     transfer budget is derived from what remains
//
// # Graceful Shutdown
//
// SIGINT and SIGTERM cancel the running command. In-flight scans stop at the
// next directory, transfer handles that were never received are destroyed and
// the database is closed.
//
// # Related Packages
//
//   - [media-catalog/internal/catalog]: browsing state machine
//   - [media-catalog/internal/scanner]: directory listing and search
//   - [media-catalog/internal/indexcache]: directory snapshots
//   - [media-catalog/internal/tags]: tag owners and entries
//   - [media-catalog/internal/transfer]: off-heap record buffers
//   - [media-catalog/internal/tui]: terminal browser
package main
