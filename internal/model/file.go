package model

import (
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"

	"media-catalog/internal/mediatypes"
)

// FileItem is one entry of a directory listing or search result.
type FileItem struct {
	Kind       mediatypes.Kind `json:"kind"`
	Name       string          `json:"name"`
	Path       string          `json:"path"`
	ParentName string          `json:"parent_name"`
	ParentPath string          `json:"parent_path"`
	// ModifiedAt is the modification time in Unix milliseconds.
	ModifiedAt int64 `json:"modified_at"`
	// Size is the byte size for files and the raw child count for folders.
	Size       int64 `json:"size"`
	CanRead    bool  `json:"can_read"`
	IsSelected bool  `json:"is_selected"`
	HasTag     bool  `json:"has_tag"`
	NameHash   int32 `json:"name_hash"`
	PathHash   int32 `json:"path_hash"`
}

// NewFileItem builds a FileItem for path, deriving names and hashes.
func NewFileItem(kind mediatypes.Kind, path string, modTime time.Time, size int64, canRead bool) FileItem {
	parent := filepath.Dir(path)
	name := filepath.Base(path)
	return FileItem{
		Kind:       kind,
		Name:       name,
		Path:       path,
		ParentName: filepath.Base(parent),
		ParentPath: parent,
		ModifiedAt: modTime.UnixMilli(),
		Size:       size,
		CanRead:    canRead,
		NameHash:   Hash32(name),
		PathHash:   Hash32(path),
	}
}

// IsFolder reports whether the item is a directory.
func (f FileItem) IsFolder() bool {
	return f.Kind == mediatypes.KindFolder
}

// ModTime returns ModifiedAt as a time.Time.
func (f FileItem) ModTime() time.Time {
	return time.UnixMilli(f.ModifiedAt)
}

// Hash32 folds a 64-bit xxhash of s into a signed 32-bit identifier.
// The result is stable across processes and platforms.
func Hash32(s string) int32 {
	h := xxhash.Sum64String(s)
	return int32(uint32(h ^ (h >> 32)))
}

// CloneItems returns a copy of items so callers can mutate flags without
// touching a shared snapshot.
func CloneItems(items []FileItem) []FileItem {
	if items == nil {
		return nil
	}
	out := make([]FileItem, len(items))
	copy(out, items)
	return out
}
