// Package filesystem wraps the directory and stat calls used by the scanner
// with retry logic for NFS stale file handles, and provides FixDirTimes for
// repairing folder modification times.
//
// Network mounts can return ESTALE after the server rotates a handle. The
// retry helpers back off exponentially and try again a bounded number of
// times; any other error is returned immediately.
package filesystem
