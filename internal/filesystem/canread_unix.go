//go:build unix

package filesystem

import "golang.org/x/sys/unix"

// CanRead reports whether the current process may read path. Directories
// additionally need search permission to be listed.
func CanRead(path string, isDir bool) bool {
	mode := uint32(unix.R_OK)
	if isDir {
		mode |= unix.X_OK
	}
	return unix.Access(path, mode) == nil
}
