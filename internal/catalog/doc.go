// Package catalog implements the controller behind one catalog view.
//
// A Controller owns the current directory, its listing, an optional search
// over it, and the selected tag owner. Loads and recursive searches run on a
// background worker, one at a time: a request that arrives while another is
// in flight is dropped with ErrBusy rather than queued. Results are published
// on the Events channel in the order their operations started.
//
// Loads are stale-while-revalidate. The cached snapshot of a directory is
// published first, then a fresh scan replaces it and the cache.
package catalog
