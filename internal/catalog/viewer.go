package catalog

import (
	"fmt"

	"media-catalog/internal/mediatypes"
	"media-catalog/internal/model"
	"media-catalog/internal/transfer"
)

// Viewer is what OpenViewer hands to a viewer component.
//
// Photo galleries can hold thousands of records, so they travel as a transfer
// handle that the viewer must consume with ReceiveGallery or give back with
// ReleaseViewer. Videos and playlists are small and are passed directly.
type Viewer struct {
	Kind   mediatypes.Kind
	Handle transfer.Handle
	// Index is the selected position in the gallery or playlist.
	Index int
	// Count is the number of records behind Handle.
	Count  int
	Video  *model.Video
	Tracks []model.Audio
}

// OpenViewer prepares a viewer for item using the current view as context: a
// photo opens a gallery over every photo and video in the view, a video opens
// on its own, and an audio file opens a playlist of the view's tracks.
func (c *Controller) OpenViewer(item model.FileItem) (Viewer, error) {
	view := c.Items()

	switch item.Kind {
	case mediatypes.KindPhoto:
		photos, index := model.GalleryFromItems(view, item.Path)
		return c.gallery(item.Path, photos, index)
	case mediatypes.KindVideo:
		v := model.VideoFromItem(item)
		return Viewer{Kind: item.Kind, Video: &v}, nil
	case mediatypes.KindAudio:
		tracks, index := model.PlaylistFromItems(view, item.Path)
		return Viewer{Kind: item.Kind, Tracks: tracks, Index: index, Count: len(tracks)}, nil
	default:
		return Viewer{}, fmt.Errorf("%w: %s", ErrNotViewable, item.Path)
	}
}

// OpenTagViewer is OpenViewer for an entry of ownerID's tag list: the
// gallery or playlist is built from the owner's other entries instead of the
// current view.
func (c *Controller) OpenTagViewer(ownerID int64, entry model.TagDirEntry) (Viewer, error) {
	if c.deps.TagDirs == nil {
		return Viewer{}, ErrNoTagDirs
	}
	if entry.Kind == mediatypes.KindVideo {
		v := model.VideoFromTagEntry(entry)
		return Viewer{Kind: entry.Kind, Video: &v}, nil
	}
	if entry.Kind != mediatypes.KindPhoto && entry.Kind != mediatypes.KindAudio {
		return Viewer{}, fmt.Errorf("%w: %s", ErrNotViewable, entry.Path)
	}

	entries, err := c.deps.TagDirs.DirsFor(c.ctx, ownerID, "")
	if err != nil {
		return Viewer{}, fmt.Errorf("failed to list entries of owner %d: %w", ownerID, err)
	}
	if entry.Kind == mediatypes.KindAudio {
		tracks, index := model.PlaylistFromTagEntries(entries, entry.Path)
		return Viewer{Kind: entry.Kind, Tracks: tracks, Index: index, Count: len(tracks)}, nil
	}
	photos, index := model.GalleryFromTagEntries(entries, entry.Path)
	return c.gallery(entry.Path, photos, index)
}

func (c *Controller) gallery(selected string, photos []model.Photo, index int) (Viewer, error) {
	h, err := transfer.BeginTransfer(c.deps.Allocator, photos, transfer.EncodePhoto)
	if err != nil {
		return Viewer{}, fmt.Errorf("failed to prepare gallery for %s: %w", selected, err)
	}
	return Viewer{Kind: mediatypes.KindPhoto, Handle: h, Index: index, Count: len(photos)}, nil
}

// ReceiveGallery decodes a gallery hand-off and releases its handle.
func (c *Controller) ReceiveGallery(v Viewer) ([]model.Photo, error) {
	if v.Kind != mediatypes.KindPhoto {
		return nil, fmt.Errorf("%w: viewer kind %s carries no gallery", ErrNotViewable, v.Kind)
	}
	return transfer.EndTransfer(c.deps.Allocator, v.Handle, transfer.DecodePhoto)
}

// ReleaseViewer abandons a hand-off that will not be received.
func (c *Controller) ReleaseViewer(v Viewer) error {
	if v.Kind != mediatypes.KindPhoto {
		return nil
	}
	return transfer.ReleaseTransfer(c.deps.Allocator, v.Handle)
}
