// Package memory sizes the process for containerized environments.
//
// GOMEMLIMIT is not derived from cgroup limits the way GOMAXPROCS is, so
// [ConfigureFromEnv] sets it from the container limit passed in through the
// environment:
//
//   - GOMEMLIMIT: standard Go variable. If set, it takes precedence.
//   - MEMORY_LIMIT: container memory limit in bytes, typically from the
//     Kubernetes Downward API.
//   - MEMORY_RATIO: share of MEMORY_LIMIT given to the Go heap, between 0.0
//     and 1.0 (default 0.75).
//
// The part of the limit that is not given to the heap is where transfer
// buffers live, since they are mapped outside the Go heap. [TransferBudget]
// turns that remainder into a byte budget for the transfer allocator.
package memory
