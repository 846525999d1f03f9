// Package database provides SQLite storage for the media catalog.
//
// It persists two kinds of state:
//   - Directory listing snapshots used by the index cache
//   - Tag owners and the paths tagged under them
//
// The schema is managed by goose migrations embedded in the migrations
// subpackage. The database runs in WAL mode with foreign keys enabled so
// removing an owner cascades to its tagged paths.
package database
