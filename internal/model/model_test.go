package model

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"media-catalog/internal/mediatypes"
)

func TestNewFileItem(t *testing.T) {
	mod := time.UnixMilli(1700000000123)
	item := NewFileItem(mediatypes.KindPhoto, "/storage/DCIM/Camera/img.jpg", mod, 2048, true)

	if item.Name != "img.jpg" {
		t.Errorf("Expected name img.jpg, got %s", item.Name)
	}
	if item.ParentName != "Camera" {
		t.Errorf("Expected parent name Camera, got %s", item.ParentName)
	}
	if item.ParentPath != "/storage/DCIM/Camera" {
		t.Errorf("Expected parent path /storage/DCIM/Camera, got %s", item.ParentPath)
	}
	if item.ModifiedAt != 1700000000123 {
		t.Errorf("Expected ModifiedAt 1700000000123, got %d", item.ModifiedAt)
	}
	if !item.ModTime().Equal(mod) {
		t.Errorf("ModTime() = %v, want %v", item.ModTime(), mod)
	}
	if item.NameHash != Hash32("img.jpg") || item.PathHash != Hash32(item.Path) {
		t.Error("Hashes not derived from name and path")
	}
}

func TestHash32Stable(t *testing.T) {
	a := Hash32("/storage/DCIM/img.jpg")
	b := Hash32("/storage/DCIM/img.jpg")
	if a != b {
		t.Errorf("Hash32 not stable: %d != %d", a, b)
	}
	if Hash32("a") == Hash32("b") {
		t.Error("Expected different hashes for different inputs")
	}
}

func TestPhotoFromItem(t *testing.T) {
	tests := []struct {
		name    string
		item    FileItem
		wantGif bool
	}{
		{
			name:    "Still photo",
			item:    NewFileItem(mediatypes.KindPhoto, "/p/a.jpg", time.UnixMilli(10), 1, true),
			wantGif: false,
		},
		{
			name:    "Video is flagged as gif",
			item:    NewFileItem(mediatypes.KindVideo, "/p/b.mp4", time.UnixMilli(10), 1, true),
			wantGif: true,
		},
		{
			name:    "GIF suffix any case",
			item:    NewFileItem(mediatypes.KindPhoto, "/p/c.GIF", time.UnixMilli(10), 1, true),
			wantGif: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PhotoFromItem(tt.item)
			if p.IsGif != tt.wantGif {
				t.Errorf("IsGif = %v, want %v", p.IsGif, tt.wantGif)
			}
			if p.PhotoURL != "file://"+tt.item.Path {
				t.Errorf("Unexpected photo url %s", p.PhotoURL)
			}
			if p.PreviewURL != "thumb_file://"+tt.item.Path {
				t.Errorf("Unexpected preview url %s", p.PreviewURL)
			}
			if p.ID != tt.item.NameHash || p.OwnerID != tt.item.PathHash {
				t.Error("Expected ids from item hashes")
			}
			if p.Text != tt.item.Name || p.Date != tt.item.ModifiedAt {
				t.Error("Expected text and date from item")
			}
		})
	}
}

func TestVideoFromItem(t *testing.T) {
	item := NewFileItem(mediatypes.KindVideo, "/movies/trip/clip.mp4", time.UnixMilli(99), 4096, true)
	v := VideoFromItem(item)

	want := Video{
		ID:          item.NameHash,
		OwnerID:     item.PathHash,
		Title:       "clip.mp4",
		Description: "/movies/trip",
		Link:        "file:///movies/trip/clip.mp4",
		Date:        99,
		Duration:    4096,
	}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("VideoFromItem mismatch (-want +got):\n%s", diff)
	}
}

func TestAudioFromItem(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantArtist string
		wantTitle  string
	}{
		{
			name:       "Artist and title",
			path:       "/music/Various/Band - Song.mp3",
			wantArtist: "Band",
			wantTitle:  "Song",
		},
		{
			name:       "Title only falls back to parent",
			path:       "/music/Album/Track01.mp3",
			wantArtist: "Album",
			wantTitle:  "Track01",
		},
		{
			name:       "Non mp3 keeps extension",
			path:       "/music/Album/Band - Live.flac",
			wantArtist: "Band",
			wantTitle:  "Live.flac",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := NewFileItem(mediatypes.KindAudio, tt.path, time.UnixMilli(1), 100, true)
			a := AudioFromItem(item)
			if a.Artist != tt.wantArtist {
				t.Errorf("Artist = %q, want %q", a.Artist, tt.wantArtist)
			}
			if a.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", a.Title, tt.wantTitle)
			}
			if !a.IsLocal {
				t.Error("Expected local track")
			}
		})
	}
}

func TestGalleryFromItems(t *testing.T) {
	items := []FileItem{
		NewFileItem(mediatypes.KindFolder, "/d/sub", time.UnixMilli(5), 2, true),
		NewFileItem(mediatypes.KindPhoto, "/d/a.jpg", time.UnixMilli(4), 1, true),
		NewFileItem(mediatypes.KindAudio, "/d/song.mp3", time.UnixMilli(3), 1, true),
		NewFileItem(mediatypes.KindVideo, "/d/b.mp4", time.UnixMilli(2), 1, true),
		NewFileItem(mediatypes.KindPhoto, "/d/c.png", time.UnixMilli(1), 1, true),
	}

	photos, index := GalleryFromItems(items, "/d/c.png")
	if len(photos) != 3 {
		t.Fatalf("Expected 3 gallery records, got %d", len(photos))
	}
	if index != 2 {
		t.Errorf("Expected selected index 2, got %d", index)
	}
	if photos[1].Text != "b.mp4" || !photos[1].IsGif {
		t.Errorf("Expected video carried as gif record, got %+v", photos[1])
	}

	_, index = GalleryFromItems(items, "/d/missing.jpg")
	if index != 0 {
		t.Errorf("Expected index 0 for missing selection, got %d", index)
	}

	tracks, index := PlaylistFromItems(items, "/d/song.mp3")
	if len(tracks) != 1 || index != 0 {
		t.Errorf("Expected one track at index 0, got %d at %d", len(tracks), index)
	}
}

func TestTagEntryFromItem(t *testing.T) {
	item := NewFileItem(mediatypes.KindFolder, "/d/sub", time.UnixMilli(5), 7, true)
	e := TagEntryFromItem(3, item)
	want := TagDirEntry{OwnerID: 3, Name: "sub", Path: "/d/sub", Kind: mediatypes.KindFolder, Size: 7}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("TagEntryFromItem mismatch (-want +got):\n%s", diff)
	}
}

func TestTagEntryProjections(t *testing.T) {
	e := TagDirEntry{Name: "Band - Song.mp3", Path: "/music/Band - Song.mp3", Kind: mediatypes.KindAudio, Size: 9}

	item := ItemFromTagEntry(e)
	if !item.HasTag {
		t.Error("Expected HasTag on rebuilt item")
	}
	if item.ParentPath != "/music" || item.ParentName != "music" {
		t.Errorf("Expected parent /music, got %q (%q)", item.ParentPath, item.ParentName)
	}

	a := AudioFromTagEntry(e)
	if a.Artist != "Band" || a.Title != "Song" {
		t.Errorf("Expected Band / Song, got %q / %q", a.Artist, a.Title)
	}

	p := PhotoFromTagEntry(TagDirEntry{Name: "a.jpg", Path: "/pics/a.jpg", Kind: mediatypes.KindPhoto})
	if p.PhotoURL != "file:///pics/a.jpg" {
		t.Errorf("Expected file URL, got %q", p.PhotoURL)
	}
	if p.IsGif {
		t.Error("Expected IsGif false for jpg")
	}
}

func TestTagEntryCollections(t *testing.T) {
	entries := []TagDirEntry{
		{Name: "sub", Path: "/d/sub", Kind: mediatypes.KindFolder},
		{Name: "a.jpg", Path: "/pics/a.jpg", Kind: mediatypes.KindPhoto},
		{Name: "intro.mp3", Path: "/music/Band/intro.mp3", Kind: mediatypes.KindAudio},
		{Name: "b.mp4", Path: "/clips/b.mp4", Kind: mediatypes.KindVideo},
		{Name: "Band - Song.mp3", Path: "/music/Band - Song.mp3", Kind: mediatypes.KindAudio},
	}

	photos, index := GalleryFromTagEntries(entries, "/clips/b.mp4")
	if len(photos) != 2 || index != 1 {
		t.Fatalf("Expected 2 gallery records with index 1, got %d at %d", len(photos), index)
	}
	if !photos[1].IsGif || photos[1].Text != "b.mp4" {
		t.Errorf("Expected the video as a gif record, got %+v", photos[1])
	}

	tracks, index := PlaylistFromTagEntries(entries, "/music/Band - Song.mp3")
	if len(tracks) != 2 || index != 1 {
		t.Fatalf("Expected 2 tracks with index 1, got %d at %d", len(tracks), index)
	}
	if tracks[0].Artist != "intro.mp3" || tracks[0].Title != "intro" {
		t.Errorf("Expected the whole name as artist, got %q / %q", tracks[0].Artist, tracks[0].Title)
	}
	if tracks[1].Artist != "Band" || tracks[1].Title != "Song" {
		t.Errorf("Expected Band / Song, got %q / %q", tracks[1].Artist, tracks[1].Title)
	}

	// The same file in a listing takes its artist from the folder.
	item := NewFileItem(mediatypes.KindAudio, "/music/Band/intro.mp3", time.UnixMilli(0), 1, true)
	if a := AudioFromItem(item); a.Artist != "Band" {
		t.Errorf("Expected folder name as artist in a listing, got %q", a.Artist)
	}

	v := VideoFromTagEntry(entries[3])
	if v.Link != "file:///clips/b.mp4" || v.Title != "b.mp4" {
		t.Errorf("Unexpected video %+v", v)
	}
}

func TestVideosFromItems(t *testing.T) {
	items := []FileItem{
		NewFileItem(mediatypes.KindPhoto, "/d/a.jpg", time.UnixMilli(1), 1, true),
		NewFileItem(mediatypes.KindVideo, "/d/b.mp4", time.UnixMilli(2), 1, true),
		NewFileItem(mediatypes.KindVideo, "/d/c.mkv", time.UnixMilli(3), 1, true),
	}
	videos, index := VideosFromItems(items, "/d/c.mkv")
	if len(videos) != 2 || index != 1 {
		t.Fatalf("Expected 2 videos with index 1, got %d at %d", len(videos), index)
	}
	if videos[0].Title != "b.mp4" || videos[0].Description != "/d" {
		t.Errorf("Unexpected first video %+v", videos[0])
	}
}
