//go:build linux || darwin || freebsd || netbsd || openbsd

package transfer

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mapRegion returns an anonymous private mapping of size bytes.
func mapRegion(size int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}
	return b, nil
}

func unmapRegion(b []byte) error {
	if b == nil {
		return nil
	}
	return unix.Munmap(b)
}
