package model

import (
	"time"

	"media-catalog/internal/mediatypes"
)

// TagOwner is a user-named collection of tagged paths.
type TagOwner struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TagDirEntry is one tagged filesystem entry. Path is unique across all owners.
type TagDirEntry struct {
	ID      int64           `json:"id,omitempty"`
	OwnerID int64           `json:"owner_id,omitempty"`
	Name    string          `json:"name"`
	Path    string          `json:"path"`
	Kind    mediatypes.Kind `json:"type"`
	Size    int64           `json:"size,omitempty"`
}

// TagFull is an owner with all of its entries, used for export and import.
type TagFull struct {
	Name    string        `json:"name"`
	Entries []TagDirEntry `json:"dirs"`
}

// TagEntryFromItem builds the entry stored when item is tagged for ownerID.
func TagEntryFromItem(ownerID int64, item FileItem) TagDirEntry {
	return TagDirEntry{
		OwnerID: ownerID,
		Name:    item.Name,
		Path:    item.Path,
		Kind:    item.Kind,
		Size:    item.Size,
	}
}

// ItemFromTagEntry rebuilds the FileItem a tag entry refers to. Timestamps
// are not stored with tags, so ModifiedAt is zero.
func ItemFromTagEntry(e TagDirEntry) FileItem {
	item := NewFileItem(e.Kind, e.Path, time.UnixMilli(0), e.Size, true)
	item.HasTag = true
	return item
}

// PhotoFromTagEntry projects a tagged photo or video into a gallery record.
func PhotoFromTagEntry(e TagDirEntry) Photo {
	return PhotoFromItem(ItemFromTagEntry(e))
}

// VideoFromTagEntry projects a tagged video.
func VideoFromTagEntry(e TagDirEntry) Video {
	return VideoFromItem(ItemFromTagEntry(e))
}

// AudioFromTagEntry projects a tagged audio file into a playlist track. A
// name without an artist part is used whole as the artist, since tagged
// tracks come from unrelated folders.
func AudioFromTagEntry(e TagDirEntry) Audio {
	a := AudioFromItem(ItemFromTagEntry(e))
	if _, _, ok := splitTrack(e.Name); !ok {
		a.Artist = e.Name
	}
	return a
}

// GalleryFromTagEntries is GalleryFromItems over an owner's entries.
func GalleryFromTagEntries(entries []TagDirEntry, selectedPath string) ([]Photo, int) {
	photos := make([]Photo, 0, len(entries))
	index := 0
	for _, e := range entries {
		if e.Kind != mediatypes.KindPhoto && e.Kind != mediatypes.KindVideo {
			continue
		}
		if e.Path == selectedPath {
			index = len(photos)
		}
		photos = append(photos, PhotoFromTagEntry(e))
	}
	return photos, index
}

// PlaylistFromTagEntries is PlaylistFromItems over an owner's entries.
func PlaylistFromTagEntries(entries []TagDirEntry, selectedPath string) ([]Audio, int) {
	tracks := make([]Audio, 0)
	index := 0
	for _, e := range entries {
		if e.Kind != mediatypes.KindAudio {
			continue
		}
		if e.Path == selectedPath {
			index = len(tracks)
		}
		tracks = append(tracks, AudioFromTagEntry(e))
	}
	return tracks, index
}
