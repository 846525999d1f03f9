// Package indexcache persists the last materialized listing of each
// directory so a view can render immediately while a fresh scan runs.
//
// Snapshots are keyed by cleaned absolute path and replaced wholesale on
// every Put. Nothing is merged.
package indexcache
