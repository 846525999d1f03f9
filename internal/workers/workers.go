package workers

import (
	"runtime"
)

// Count returns multiplier workers per available CPU, at least 1 and at most
// limit (0 means no cap). A positive override replaces the computed value.
func Count(multiplier float64, limit, override int) int {
	workers := override
	if workers <= 0 {
		// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
		workers = int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	}

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit, override int) int {
	return Count(1.0, limit, override)
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit, override int) int {
	return Count(2.0, limit, override)
}
