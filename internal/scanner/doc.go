// Package scanner lists and searches directories for the catalog.
//
// A listing keeps folders that are readable, visible and non-empty, and files
// whose extension matches one of the configured photo, video or audio sets.
// Reserved paths (an app-data directory under the storage root, for example)
// are always excluded. Results are ordered folders first, then files, each
// group by modification time with the newest first; ties keep the lexical
// order in which entries were read.
//
// Per-entry failures are skipped and counted, never returned. A root that
// cannot be listed produces an empty slice together with a *ScanError so the
// caller can decide whether to surface it.
//
// Both List and Search check ctx at every directory-entry boundary and return
// ctx.Err() with no partial results when it is canceled.
package scanner
