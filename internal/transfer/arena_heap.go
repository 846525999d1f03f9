//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package transfer

// Platforms without anonymous mmap fall back to heap regions.
func mapRegion(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func unmapRegion([]byte) error {
	return nil
}
