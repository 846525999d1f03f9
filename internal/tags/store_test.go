package tags

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-catalog/internal/database"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/model"
)

func newTestStore(t *testing.T) (*Store, *database.Database) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "tags.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := New(context.Background(), db)
	require.NoError(t, err)
	return s, db
}

func item(kind mediatypes.Kind, path string) model.FileItem {
	return model.NewFileItem(kind, path, time.UnixMilli(1000), 10, true)
}

func TestTagAndUntag(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	owner, err := s.AddOwner(ctx, "holiday")
	require.NoError(t, err)

	photo := item(mediatypes.KindPhoto, "/media/DCIM/IMG_1.jpg")

	entry, err := s.Tag(ctx, owner, photo)
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, "IMG_1.jpg", entry.Name)
	assert.True(t, s.IsTagged(photo.Path))

	removed, err := s.Untag(ctx, photo.Path)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, s.IsTagged(photo.Path))

	removed, err = s.Untag(ctx, photo.Path)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestTagTwiceKeepsOneEntry(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, err := s.AddOwner(ctx, "a")
	require.NoError(t, err)
	b, err := s.AddOwner(ctx, "b")
	require.NoError(t, err)

	folder := item(mediatypes.KindFolder, "/media/Music")
	_, err = s.Tag(ctx, a, folder)
	require.NoError(t, err)
	_, err = s.Tag(ctx, a, folder)
	require.NoError(t, err)

	dirs, err := s.DirsFor(ctx, a, "")
	require.NoError(t, err)
	assert.Len(t, dirs, 1)

	_, err = s.Tag(ctx, b, folder)
	require.NoError(t, err)

	dirs, err = s.DirsFor(ctx, a, "")
	require.NoError(t, err)
	assert.Empty(t, dirs)
	dirs, err = s.DirsFor(ctx, b, "")
	require.NoError(t, err)
	assert.Len(t, dirs, 1)
}

func TestTagUnknownOwner(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Tag(context.Background(), 42, item(mediatypes.KindPhoto, "/media/x.jpg"))
	assert.ErrorIs(t, err, ErrOwnerNotFound)
	assert.False(t, s.IsTagged("/media/x.jpg"))
}

func TestOwnerValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddOwner(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyName)

	assert.ErrorIs(t, s.RemoveOwner(ctx, 99), ErrOwnerNotFound)
	assert.ErrorIs(t, s.RenameOwner(ctx, 99, "x"), ErrOwnerNotFound)

	id, err := s.AddOwner(ctx, "x")
	require.NoError(t, err)
	assert.ErrorIs(t, s.RenameOwner(ctx, id, ""), ErrEmptyName)
	require.NoError(t, s.RenameOwner(ctx, id, "y"))

	o, err := s.Owner(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "y", o.Name)
}

func TestRemoveOwnerClearsMembership(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddOwner(ctx, "trip")
	require.NoError(t, err)
	for _, p := range []string{"/m/a.jpg", "/m/b.jpg"} {
		_, err := s.Tag(ctx, id, item(mediatypes.KindPhoto, p))
		require.NoError(t, err)
	}

	require.NoError(t, s.RemoveOwner(ctx, id))
	assert.False(t, s.IsTagged("/m/a.jpg"))
	assert.False(t, s.IsTagged("/m/b.jpg"))

	owners, err := s.Owners(ctx)
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestDirsForOrderAndFilter(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddOwner(ctx, "mix")
	require.NoError(t, err)
	for _, p := range []string{"/m/Zebra.jpg", "/m/apple.jpg", "/m/PineApple.png"} {
		_, err := s.Tag(ctx, id, item(mediatypes.KindPhoto, p))
		require.NoError(t, err)
	}

	all, err := s.DirsFor(ctx, id, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Zebra.jpg", all[0].Name, "insertion order, not name order")

	filtered, err := s.DirsFor(ctx, id, "APPLE")
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "apple.jpg", filtered[0].Name)
	assert.Equal(t, "PineApple.png", filtered[1].Name)
}

func TestToggle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddOwner(ctx, "fav")
	require.NoError(t, err)
	it := item(mediatypes.KindAudio, "/m/song.mp3")

	tagged, err := s.Toggle(ctx, id, it)
	require.NoError(t, err)
	assert.True(t, tagged)

	tagged, err = s.Toggle(ctx, id, it)
	require.NoError(t, err)
	assert.False(t, tagged)
	assert.False(t, s.IsTagged(it.Path))
}

func TestRemoveEntry(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddOwner(ctx, "o")
	require.NoError(t, err)
	e, err := s.Tag(ctx, id, item(mediatypes.KindVideo, "/m/clip.mp4"))
	require.NoError(t, err)

	require.NoError(t, s.RemoveEntry(ctx, e.ID))
	assert.False(t, s.IsTagged("/m/clip.mp4"))
	require.NoError(t, s.RemoveEntry(ctx, e.ID))
}

func TestReloadSeesExistingRows(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddOwner(ctx, "o")
	require.NoError(t, err)
	_, err = db.PutEntry(ctx, model.TagDirEntry{OwnerID: id, Name: "x.jpg", Path: "/m/x.jpg", Kind: mediatypes.KindPhoto})
	require.NoError(t, err)

	assert.False(t, s.IsTagged("/m/x.jpg"), "direct writes bypass the in-memory set")
	require.NoError(t, s.Reload(ctx))
	assert.True(t, s.IsTagged("/m/x.jpg"))

	fresh, err := New(ctx, db)
	require.NoError(t, err)
	assert.True(t, fresh.IsTagged("/m/x.jpg"))
}

func TestExportImportJSON(t *testing.T) {
	src, _ := newTestStore(t)
	ctx := context.Background()

	id, err := src.AddOwner(ctx, "trip")
	require.NoError(t, err)
	_, err = src.Tag(ctx, id, item(mediatypes.KindFolder, "/m/Rome"))
	require.NoError(t, err)
	_, err = src.Tag(ctx, id, item(mediatypes.KindPhoto, "/m/Rome/1.jpg"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.ExportJSON(ctx, &buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"tags"`)
	assert.Contains(t, out, `"dirs"`)
	assert.Contains(t, out, `"type": 0`)
	assert.NotContains(t, out, `"owner_id"`)

	dst, _ := newTestStore(t)
	res, err := dst.ImportJSON(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, res.OwnersCreated)
	assert.Equal(t, 2, res.EntriesStored)
	assert.True(t, dst.IsTagged("/m/Rome"))
	assert.True(t, dst.IsTagged("/m/Rome/1.jpg"))

	// Importing the same backup again merges into the existing owner.
	res, err = dst.ImportJSON(ctx, strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 0, res.OwnersCreated)

	owners, err := dst.Owners(ctx)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, 2, owners[0].Count)
}

func TestImportJSONMalformed(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.ImportJSON(context.Background(), strings.NewReader(`"just a string"`))
	assert.ErrorIs(t, err, model.ErrMalformed)
}

func TestResolveOwner(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.AddOwner(ctx, "trip")
	require.NoError(t, err)
	_, err = s.AddOwner(ctx, "trip")
	require.NoError(t, err)
	_, err = s.Tag(ctx, first, item(mediatypes.KindPhoto, "/p/a.jpg"))
	require.NoError(t, err)

	byName, err := s.ResolveOwner(ctx, " trip ")
	require.NoError(t, err)
	assert.Equal(t, first, byName.ID, "name resolves to the oldest owner")
	assert.Equal(t, 1, byName.Count)

	byID, err := s.ResolveOwner(ctx, strconv.FormatInt(first, 10))
	require.NoError(t, err)
	assert.Equal(t, "trip", byID.Name)

	_, err = s.ResolveOwner(ctx, "nobody")
	assert.ErrorIs(t, err, ErrOwnerNotFound)
	_, err = s.ResolveOwner(ctx, "99")
	assert.ErrorIs(t, err, ErrOwnerNotFound)
	_, err = s.ResolveOwner(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyName)
}
