package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		override   int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound task (1.0x multiplier)",
			multiplier: 1.0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
		{
			name:       "I/O-bound task (2.0x multiplier)",
			multiplier: 2.0,
			minExpect:  1,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "With limit lower than calculated",
			multiplier: 2.0,
			limit:      1,
			minExpect:  1,
			maxExpect:  1,
		},
		{
			name:       "Very low multiplier",
			multiplier: 0.01,
			minExpect:  1,
			maxExpect:  1,
		},
		{
			name:       "Override wins",
			multiplier: 1.0,
			override:   7,
			minExpect:  7,
			maxExpect:  7,
		},
		{
			name:       "Override capped by limit",
			multiplier: 1.0,
			limit:      4,
			override:   20,
			minExpect:  4,
			maxExpect:  4,
		},
		{
			name:       "Negative override ignored",
			multiplier: 1.0,
			override:   -3,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit, tt.override)

			if got < tt.minExpect {
				t.Errorf("Count(%v, %d, %d) = %d, expected >= %d", tt.multiplier, tt.limit, tt.override, got, tt.minExpect)
			}
			if got > tt.maxExpect {
				t.Errorf("Count(%v, %d, %d) = %d, expected <= %d", tt.multiplier, tt.limit, tt.override, got, tt.maxExpect)
			}
		})
	}
}

func TestForHelpers(t *testing.T) {
	if ForIO(0, 0) < ForCPU(0, 0) {
		t.Errorf("ForIO should never be below ForCPU: %d < %d", ForIO(0, 0), ForCPU(0, 0))
	}
	if got := ForIO(3, 0); got > 3 {
		t.Errorf("ForIO(3) = %d, expected <= 3", got)
	}
}
