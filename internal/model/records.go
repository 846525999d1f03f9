package model

import (
	"strings"

	"media-catalog/internal/mediatypes"
)

const (
	fileScheme  = "file://"
	thumbScheme = "thumb_file://"
)

// Photo is the export record opened by the gallery viewer. Videos are carried
// as photos with IsGif set so the gallery can page across both kinds.
type Photo struct {
	ID         int32  `json:"id"`
	OwnerID    int32  `json:"owner_id"`
	Date       int64  `json:"date"`
	PhotoURL   string `json:"photo_url"`
	PreviewURL string `json:"preview_url"`
	IsGif      bool   `json:"is_gif"`
	Text       string `json:"text"`
}

// Video is the export record for a single video.
type Video struct {
	ID          int32  `json:"id"`
	OwnerID     int32  `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Date        int64  `json:"date"`
	Image       string `json:"image,omitempty"`
	Repeat      bool   `json:"repeat"`
	Duration    int32  `json:"duration"`
}

// Audio is the export record for one playlist track.
type Audio struct {
	ID         int32  `json:"id"`
	OwnerID    int32  `json:"owner_id"`
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	Duration   int32  `json:"duration"`
	URL        string `json:"url"`
	IsLocal    bool   `json:"is_local"`
	ThumbImage string `json:"thumb_image,omitempty"`
}

// PhotoFromItem projects a photo or video item into a gallery record.
func PhotoFromItem(i FileItem) Photo {
	return Photo{
		ID:         i.NameHash,
		OwnerID:    i.PathHash,
		Date:       i.ModifiedAt,
		PhotoURL:   fileScheme + i.Path,
		PreviewURL: thumbScheme + i.Path,
		IsGif:      i.Kind == mediatypes.KindVideo || strings.HasSuffix(strings.ToLower(i.Name), "gif"),
		Text:       i.Name,
	}
}

// VideoFromItem projects a video item. There is no probed duration, so the
// byte size stands in for it and the parent path becomes the description.
func VideoFromItem(i FileItem) Video {
	return Video{
		ID:          i.NameHash,
		OwnerID:     i.PathHash,
		Title:       i.Name,
		Description: i.ParentPath,
		Link:        fileScheme + i.Path,
		Date:        i.ModifiedAt,
		Duration:    int32(i.Size),
	}
}

// splitTrack drops the .mp3 suffix from name and splits "Artist - Title".
// ok is false when there is no artist part.
func splitTrack(name string) (artist, title string, ok bool) {
	title = strings.ReplaceAll(name, ".mp3", "")
	parts := strings.Split(title, " - ")
	if len(parts) < 2 {
		return "", title, false
	}
	artist = parts[0]
	return artist, strings.ReplaceAll(title, artist+" - ", ""), true
}

// AudioFromItem projects an audio item. Names of the form "Artist - Title"
// are split; otherwise the parent directory name is used as the artist.
func AudioFromItem(i FileItem) Audio {
	artist, title, ok := splitTrack(i.Name)
	if !ok {
		artist = i.ParentName
	}

	return Audio{
		ID:         i.NameHash,
		OwnerID:    i.PathHash,
		Artist:     artist,
		Title:      title,
		Duration:   int32(i.Size),
		URL:        fileScheme + i.Path,
		IsLocal:    true,
		ThumbImage: thumbScheme + i.Path,
	}
}

// GalleryFromItems returns the photo and video subset of items as gallery
// records, in list order, together with the position of selectedPath within
// that subset. The index is 0 when selectedPath is not in the subset.
func GalleryFromItems(items []FileItem, selectedPath string) ([]Photo, int) {
	photos := make([]Photo, 0, len(items))
	index := 0
	for _, i := range items {
		if i.Kind != mediatypes.KindPhoto && i.Kind != mediatypes.KindVideo {
			continue
		}
		if i.Path == selectedPath {
			index = len(photos)
		}
		photos = append(photos, PhotoFromItem(i))
	}
	return photos, index
}

// PlaylistFromItems returns the audio subset of items as tracks and the
// position of selectedPath within it.
func PlaylistFromItems(items []FileItem, selectedPath string) ([]Audio, int) {
	tracks := make([]Audio, 0)
	index := 0
	for _, i := range items {
		if i.Kind != mediatypes.KindAudio {
			continue
		}
		if i.Path == selectedPath {
			index = len(tracks)
		}
		tracks = append(tracks, AudioFromItem(i))
	}
	return tracks, index
}

// VideosFromItems returns the video subset of items and the position of
// selectedPath within it.
func VideosFromItems(items []FileItem, selectedPath string) ([]Video, int) {
	videos := make([]Video, 0)
	index := 0
	for _, i := range items {
		if i.Kind != mediatypes.KindVideo {
			continue
		}
		if i.Path == selectedPath {
			index = len(videos)
		}
		videos = append(videos, VideoFromItem(i))
	}
	return videos, index
}
