package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// IsHidden reports whether name is a dot-file.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// CountEntries returns the number of raw entries in dir, or -1 when the
// directory cannot be listed.
func CountEntries(dir string) int64 {
	f, err := os.Open(dir)
	if err != nil {
		return -1
	}
	defer func() { _ = f.Close() }()

	names, err := f.Readdirnames(-1)
	if err != nil && len(names) == 0 {
		return -1
	}
	return int64(len(names))
}

// HasEntries reports whether dir contains at least one entry.
func HasEntries(dir string) bool {
	f, err := os.Open(dir)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	names, _ := f.Readdirnames(1)
	return len(names) > 0
}

// IsWithin reports whether path equals root or lies below it.
func IsWithin(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
