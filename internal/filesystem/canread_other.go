//go:build !unix

package filesystem

import "os"

// CanRead reports whether path can be opened for reading.
func CanRead(path string, _ bool) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
