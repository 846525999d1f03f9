// Package logging is the leveled printf logger used across media-catalog.
//
// Messages below the current level are dropped. The level starts from
// LOG_LEVEL (debug, info, warn, error) or DEBUG=1 and can be changed with
// SetLevel, which the --log-level flag does.
//
// Output goes to stderr. With LOG_FILE set, every line is also written to a
// rotated file (LOG_MAX_SIZE_MB, LOG_MAX_BACKUPS, LOG_MAX_AGE_DAYS,
// LOG_COMPRESS). The terminal browser points console output at io.Discard with
// SetOutput while it owns the screen; the file keeps receiving lines.
package logging
