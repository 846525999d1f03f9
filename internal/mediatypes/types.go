package mediatypes

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind represents the media category of a catalog entry.
type Kind int

const (
	// KindUnknown is a regular file that matched no extension set.
	KindUnknown Kind = -1
	// KindFolder represents a directory.
	KindFolder Kind = 0
	// KindPhoto represents a photo file.
	KindPhoto Kind = 1
	// KindVideo represents a video file.
	KindVideo Kind = 2
	// KindAudio represents an audio file.
	KindAudio Kind = 3
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsMedia reports whether the kind is one of the playable or viewable kinds.
func (k Kind) IsMedia() bool {
	return k == KindPhoto || k == KindVideo || k == KindAudio
}

// KindFromInt converts a persisted integer back to a Kind. Unrecognized values
// map to KindUnknown.
func KindFromInt(v int) Kind {
	switch Kind(v) {
	case KindFolder, KindPhoto, KindVideo, KindAudio:
		return Kind(v)
	default:
		return KindUnknown
	}
}

// ExtensionSets holds the three configurable extension allow-lists.
// Extensions are stored lowercase without the leading dot.
type ExtensionSets struct {
	Photo []string
	Video []string
	Audio []string
}

// DefaultExtensionSets returns the stock allow-lists.
func DefaultExtensionSets() ExtensionSets {
	return ExtensionSets{
		Photo: []string{"jpg", "jpeg", "webp", "png", "tiff"},
		Video: []string{"gif", "mp4", "avi", "mpeg"},
		Audio: []string{"mp3", "ogg", "flac", "opus"},
	}
}

// Normalize lowercases every extension, strips leading dots and drops blanks.
func (s ExtensionSets) Normalize() ExtensionSets {
	return ExtensionSets{
		Photo: normalizeList(s.Photo),
		Video: normalizeList(s.Video),
		Audio: normalizeList(s.Audio),
	}
}

func normalizeList(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimLeft(strings.TrimSpace(e), "."))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Classify returns the kind for a directory entry. Directories are always
// KindFolder. For files the extension is compared case-insensitively against
// the photo, video and audio sets in that order.
func (s ExtensionSets) Classify(name string, isDir bool) Kind {
	if isDir {
		return KindFolder
	}

	ext := Extension(name)
	if ext == "" {
		return KindUnknown
	}

	switch {
	case contains(s.Photo, ext):
		return KindPhoto
	case contains(s.Video, ext):
		return KindVideo
	case contains(s.Audio, ext):
		return KindAudio
	default:
		return KindUnknown
	}
}

// Extension returns the lowercase extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func contains(list []string, ext string) bool {
	for _, e := range list {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
