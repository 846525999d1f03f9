package transfer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"media-catalog/internal/mediatypes"
	"media-catalog/internal/model"
)

func photos(n int) []model.Photo {
	out := make([]model.Photo, 0, n)
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("/storage/DCIM/Camera/IMG_%05d.jpg", i)
		item := model.NewFileItem(mediatypes.KindPhoto, path, time.UnixMilli(int64(1_600_000_000_000+i)), int64(i), true)
		out = append(out, model.PhotoFromItem(item))
	}
	return out
}

func TestPhotoRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 10000} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			a := NewAllocator(Options{})
			want := photos(n)

			h, err := BeginTransfer(a, want, EncodePhoto)
			if err != nil {
				t.Fatalf("BeginTransfer failed: %v", err)
			}
			if a.Live() != 1 {
				t.Errorf("Expected 1 live handle, got %d", a.Live())
			}

			got, err := EndTransfer(a, h, DecodePhoto)
			if err != nil {
				t.Fatalf("EndTransfer failed: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			if a.Live() != 0 {
				t.Errorf("Expected handle released after EndTransfer, got %d live", a.Live())
			}
			if a.LiveBytes() != 0 {
				t.Errorf("Expected 0 live bytes, got %d", a.LiveBytes())
			}
		})
	}
}

func TestVideoAudioFileItemRoundTrip(t *testing.T) {
	a := NewAllocator(Options{})

	videos := []model.Video{
		{ID: 1, OwnerID: -2, Title: "clip.mp4", Description: "/v", Link: "file:///v/clip.mp4", Date: 99, Repeat: true, Duration: 1234},
		{ID: 3, Title: "üñí.avi", Image: "thumb_file:///v/üñí.avi"},
	}
	gotVideos := roundTrip(t, a, videos, EncodeVideo, DecodeVideo)
	if diff := cmp.Diff(videos, gotVideos); diff != "" {
		t.Errorf("video mismatch (-want +got):\n%s", diff)
	}

	tracks := []model.Audio{
		{ID: 5, Artist: "Band", Title: "Song", Duration: 300, URL: "file:///m/Band - Song.mp3", IsLocal: true, ThumbImage: "thumb_file:///m/Band - Song.mp3"},
		{ID: 6, Artist: "", Title: "untitled"},
	}
	gotTracks := roundTrip(t, a, tracks, EncodeAudio, DecodeAudio)
	if diff := cmp.Diff(tracks, gotTracks); diff != "" {
		t.Errorf("audio mismatch (-want +got):\n%s", diff)
	}

	folder := model.NewFileItem(mediatypes.KindFolder, "/m/Music", time.UnixMilli(7), 12, true)
	folder.HasTag = true
	photo := model.NewFileItem(mediatypes.KindPhoto, "/m/a.JPG", time.UnixMilli(8), 4096, false)
	photo.IsSelected = true
	items := []model.FileItem{folder, photo}
	gotItems := roundTrip(t, a, items, EncodeFileItem, DecodeFileItem)
	if diff := cmp.Diff(items, gotItems); diff != "" {
		t.Errorf("file item mismatch (-want +got):\n%s", diff)
	}
}

func roundTrip[T any](t *testing.T, a *Allocator, items []T, enc Encoder[T], dec Decoder[T]) []T {
	t.Helper()
	h, err := BeginTransfer(a, items, enc)
	if err != nil {
		t.Fatalf("BeginTransfer failed: %v", err)
	}
	got, err := EndTransfer(a, h, dec)
	if err != nil {
		t.Fatalf("EndTransfer failed: %v", err)
	}
	return got
}

func TestFieldEncoding(t *testing.T) {
	a := NewAllocator(Options{})
	w, err := a.Create(FlagNone)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	s := "héllo"
	w.WriteInt(-7)
	w.WriteLong(1 << 40)
	w.WriteBool(true)
	w.WriteString(s)
	w.WriteOptString(nil)
	w.WriteString("")
	if err := w.Err(); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if want := 4 + 8 + 4 + (4 + len(s)) + 4 + 4; w.Len() != want {
		t.Errorf("Expected %d bytes written, got %d", want, w.Len())
	}

	r, err := a.Open(w.Handle())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if v := r.ReadInt(); v != -7 {
		t.Errorf("Expected -7, got %d", v)
	}
	if v := r.ReadLong(); v != 1<<40 {
		t.Errorf("Expected 1<<40, got %d", v)
	}
	if !r.ReadBool() {
		t.Error("Expected true")
	}
	if v := r.ReadString(); v != s {
		t.Errorf("Expected %q, got %q", s, v)
	}
	if v := r.ReadOptString(); v != nil {
		t.Errorf("Expected absent string, got %q", *v)
	}
	if v := r.ReadOptString(); v == nil || *v != "" {
		t.Errorf("Expected present empty string, got %v", v)
	}
	if r.Remaining() != 0 {
		t.Errorf("Expected buffer fully consumed, %d bytes left", r.Remaining())
	}

	_ = r.ReadInt()
	if !errors.Is(r.Err(), ErrShortBuffer) {
		t.Errorf("Expected ErrShortBuffer, got %v", r.Err())
	}

	if err := a.Destroy(w.Handle()); err != nil {
		t.Errorf("Destroy failed: %v", err)
	}
}

func TestGrowthPreservesData(t *testing.T) {
	a := NewAllocator(Options{})
	w, err := a.Create(FlagList)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	long := strings.Repeat("x", 3*initialCapacity)
	w.WriteString("head")
	w.WriteString(long)
	w.WriteString("tail")
	w.WriteCount(3)
	if err := w.Err(); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if a.LiveBytes() < int64(w.Len()) {
		t.Errorf("Expected at least %d live bytes, got %d", w.Len(), a.LiveBytes())
	}

	got, err := EndTransfer[string](a, w.Handle(), func(r *Reader) string { return r.ReadString() })
	if err != nil {
		t.Fatalf("EndTransfer failed: %v", err)
	}
	if diff := cmp.Diff([]string{"head", long, "tail"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReadAfterDestroy(t *testing.T) {
	a := NewAllocator(Options{})
	h, err := BeginTransfer(a, photos(3), EncodePhoto)
	if err != nil {
		t.Fatalf("BeginTransfer failed: %v", err)
	}

	r, err := a.Open(h)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := ReleaseTransfer(a, h); err != nil {
		t.Fatalf("ReleaseTransfer failed: %v", err)
	}

	if _, err := ReadRecordList(r, DecodePhoto); !errors.Is(err, ErrReleased) {
		t.Errorf("Expected ErrReleased reading through a stale reader, got %v", err)
	}
	if _, err := a.Open(h); !errors.Is(err, ErrReleased) {
		t.Errorf("Expected ErrReleased from Open, got %v", err)
	}
	if err := a.Destroy(h); !errors.Is(err, ErrReleased) {
		t.Errorf("Expected ErrReleased on double destroy, got %v", err)
	}
	if _, err := EndTransfer(a, h, DecodePhoto); !errors.Is(err, ErrReleased) {
		t.Errorf("Expected ErrReleased from EndTransfer, got %v", err)
	}
}

func TestUnknownHandle(t *testing.T) {
	a := NewAllocator(Options{})
	for _, h := range []Handle{0, -1, 12345} {
		if _, err := a.Open(h); !errors.Is(err, ErrUnknownHandle) {
			t.Errorf("Open(%d): expected ErrUnknownHandle, got %v", h, err)
		}
		if err := a.Destroy(h); !errors.Is(err, ErrUnknownHandle) {
			t.Errorf("Destroy(%d): expected ErrUnknownHandle, got %v", h, err)
		}
	}
}

func TestAllocationBudget(t *testing.T) {
	a := NewAllocator(Options{MaxBytes: 100})
	if _, err := a.Create(FlagList); !errors.Is(err, ErrAllocation) {
		t.Fatalf("Expected ErrAllocation for create over budget, got %v", err)
	}
	if a.Live() != 0 || a.LiveBytes() != 0 {
		t.Errorf("Expected nothing live, got %d handles / %d bytes", a.Live(), a.LiveBytes())
	}

	a = NewAllocator(Options{MaxBytes: initialCapacity})
	h, err := BeginTransfer(a, photos(500), EncodePhoto)
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("Expected ErrAllocation when growth exceeds budget, got %v", err)
	}
	if h != 0 {
		t.Errorf("Expected zero handle on failure, got %d", h)
	}
	if a.Live() != 0 {
		t.Errorf("Expected failed transfer to leave no live handle, got %d", a.Live())
	}
	if a.LiveBytes() != 0 {
		t.Errorf("Expected budget returned, got %d bytes", a.LiveBytes())
	}
}

func TestWriterErrorsAreSticky(t *testing.T) {
	a := NewAllocator(Options{})
	w, err := a.Create(FlagNone)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	w.WriteCount(1)
	if !errors.Is(w.Err(), ErrNoCountHeader) {
		t.Fatalf("Expected ErrNoCountHeader, got %v", w.Err())
	}
	before := w.Len()
	w.WriteInt(1)
	if w.Len() != before {
		t.Error("Expected writes after an error to be ignored")
	}
	if a.Live() != 0 {
		t.Errorf("Expected failed writer to release its handle, got %d live", a.Live())
	}
}

func TestAbsentList(t *testing.T) {
	a := NewAllocator(Options{})
	w, err := a.Create(FlagList)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := EndTransfer(a, w.Handle(), DecodePhoto)
	if err != nil {
		t.Fatalf("EndTransfer failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil list for unwritten header, got %v", got)
	}
}

func TestReadRecordListNeedsHeader(t *testing.T) {
	a := NewAllocator(Options{})
	w, err := a.Create(FlagNone)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer a.Destroy(w.Handle())

	if err := WriteRecord(w, photos(1)[0], EncodePhoto); err != nil {
		t.Fatalf("WriteRecord failed: %v", err)
	}

	r, err := a.Open(w.Handle())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := ReadRecordList(r, DecodePhoto); !errors.Is(err, ErrNoCountHeader) {
		t.Errorf("Expected ErrNoCountHeader, got %v", err)
	}

	r, _ = a.Open(w.Handle())
	p, err := ReadRecord(r, DecodePhoto)
	if err != nil {
		t.Fatalf("ReadRecord failed: %v", err)
	}
	if diff := cmp.Diff(photos(1)[0], p); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentHandles(t *testing.T) {
	a := NewAllocator(Options{})

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			want := photos(n)
			h, err := BeginTransfer(a, want, EncodePhoto)
			if err != nil {
				errs <- err
				return
			}
			got, err := EndTransfer(a, h, DecodePhoto)
			if err != nil {
				errs <- err
				return
			}
			if len(got) != n {
				errs <- fmt.Errorf("expected %d records, got %d", n, len(got))
			}
		}(i * 10)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	if a.Live() != 0 {
		t.Errorf("Expected no live handles, got %d", a.Live())
	}
}

func TestCloseReleasesLeaks(t *testing.T) {
	a := NewAllocator(Options{})
	for i := 0; i < 3; i++ {
		if _, err := BeginTransfer(a, photos(2), EncodePhoto); err != nil {
			t.Fatalf("BeginTransfer failed: %v", err)
		}
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if a.Live() != 0 || a.LiveBytes() != 0 {
		t.Errorf("Expected everything released, got %d handles / %d bytes", a.Live(), a.LiveBytes())
	}
}
