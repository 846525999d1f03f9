// Package startup loads configuration and writes the startup and shutdown
// log sections.
//
// # Configuration
//
// [LoadConfig] reads an optional YAML file, then environment variables, then
// defaults. Without an explicit path, config.yaml is searched for in the
// working directory, the user config directory (media-catalog/) and
// ~/.media-catalog. Every key can be set from the environment with the
// MEDIA_CATALOG_ prefix, and the common ones also have short names:
//
//   - storage_root (STORAGE_ROOT): directory the catalog opens at (default: home directory)
//   - database_dir (DATABASE_DIR): where catalog.db lives (default: user cache dir)
//   - reserved_dirs: directories hidden from listings, relative to the root (default: Android)
//   - photo_ext, video_ext, audio_ext: extension allow-lists, comma separated in the environment
//   - root_boundary: refuse to leave the storage root (default: false)
//   - scan_workers (SCAN_WORKERS): per-directory stat fan-out, 0 for automatic
//   - transfer_max_bytes: budget for off-heap transfer buffers, 0 for automatic
//   - metrics_addr: listen address for /metrics, empty to disable
//   - watch: refresh the open directory when its entries change (default: true)
//
// The returned [Config] is passed to constructors explicitly. Invalid values
// produce errors wrapping [ErrConfigInvalid].
package startup
