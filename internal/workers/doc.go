/*
Package workers sizes bounded worker pools in containerized environments.

Go 1.19+ sets GOMAXPROCS from the container CPU limit, while runtime.NumCPU
still reports the host's cores. Every helper here starts from GOMAXPROCS so a
pod limited to 2 CPUs on a 64-core node gets a pool sized for 2.

# Usage

	// Directory stats during a scan spend most of their time in syscalls.
	n := workers.ForIO(16, cfg.ScanWorkers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n)

The override argument is the operator's explicit setting (scan_workers in the
config file, or SCAN_WORKERS in the environment). It replaces the computed
value when positive but is still capped by limit.

# Workload Types

  - CPU-bound (multiplier 1.0): hashing, encoding
  - I/O-bound (multiplier 2.0): stat, readdir, SQLite reads

All functions are safe for concurrent use.
*/
package workers
