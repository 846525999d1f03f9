package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-catalog/internal/mediatypes"
	"media-catalog/internal/model"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// setup builds a small media tree and points the configuration at it and at
// a private database directory.
func setup(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping SQLite-backed command test in short mode")
	}

	home := t.TempDir()
	root := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	t.Setenv("STORAGE_ROOT", root)
	t.Setenv("DATABASE_DIR", t.TempDir())
	for _, key := range []string{"LOG_FILE", "MEMORY_LIMIT", "GOMEMLIMIT", "MEDIA_CATALOG_METRICS_ADDR", "MEDIA_CATALOG_TRANSFER_MAX_BYTES"} {
		t.Setenv(key, "")
	}

	files := map[string]time.Duration{
		"Camera/a.jpg": 10 * time.Minute,
		"Camera/b.mp4": 20 * time.Minute,
		"top.jpg":      30 * time.Minute,
		"notes.txt":    40 * time.Minute,
	}
	for rel, offset := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(rel), 0o644))
		ts := baseTime.Add(offset)
		require.NoError(t, os.Chtimes(full, ts, ts))
	}
	camera := filepath.Join(root, "Camera")
	require.NoError(t, os.Chtimes(camera, baseTime, baseTime))

	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%s failed: %v", strings.Join(args, " "), err)
	}
	return out
}

func decodeItems(t *testing.T, out string) []model.FileItem {
	t.Helper()
	var items []model.FileItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	return items
}

func names(items []model.FileItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestListCommand(t *testing.T) {
	root := setup(t)

	items := decodeItems(t, mustRun(t, "list", "--json"))
	assert.Equal(t, []string{"Camera", "top.jpg"}, names(items))
	assert.Equal(t, mediatypes.KindFolder, items[0].Kind)
	assert.Equal(t, int64(2), items[0].Size)

	out := mustRun(t, "list", filepath.Join(root, "Camera"))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], filepath.Join(root, "Camera", "b.mp4"))
	assert.Contains(t, lines[1], filepath.Join(root, "Camera", "a.jpg"))
	assert.True(t, strings.HasPrefix(lines[0], "video"), "Expected kind column first, got %q", lines[0])
}

func TestListCachedSnapshot(t *testing.T) {
	root := setup(t)

	mustRun(t, "list")
	require.NoError(t, os.WriteFile(filepath.Join(root, "new.jpg"), []byte("x"), 0o644))

	cached := decodeItems(t, mustRun(t, "list", "--cached", "--json"))
	assert.Equal(t, []string{"Camera", "top.jpg"}, names(cached))

	fresh := decodeItems(t, mustRun(t, "list", "--json"))
	assert.Len(t, fresh, 3)

	var paths []string
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "cache", "show", "--json")), &paths))
	assert.Equal(t, []string{root}, paths)
}

func TestSearchCommand(t *testing.T) {
	root := setup(t)

	items := decodeItems(t, mustRun(t, "search", "--json", "B.MP"))
	require.Len(t, items, 1)
	assert.Equal(t, filepath.Join(root, "Camera", "b.mp4"), items[0].Path)

	local := decodeItems(t, mustRun(t, "search", "--json", "--local", "jpg"))
	assert.Equal(t, []string{"top.jpg"}, names(local))

	none := decodeItems(t, mustRun(t, "search", "--json", "nothing-matches"))
	assert.Empty(t, none)
}

func TestTagsCommands(t *testing.T) {
	root := setup(t)
	top := filepath.Join(root, "top.jpg")

	assert.Equal(t, "1\n", mustRun(t, "tags", "add-owner", "trip"))
	mustRun(t, "tags", "tag", "1", top)

	var owners []model.TagOwner
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "tags", "owners", "--json")), &owners))
	require.Len(t, owners, 1)
	assert.Equal(t, "trip", owners[0].Name)
	assert.Equal(t, 1, owners[0].Count)

	items := decodeItems(t, mustRun(t, "list", "--json"))
	require.Len(t, items, 2)
	assert.True(t, items[1].HasTag, "Expected top.jpg to be marked as tagged")
	assert.False(t, items[0].HasTag)

	backup := filepath.Join(t.TempDir(), "tags.json")
	mustRun(t, "tags", "export", backup)

	mustRun(t, "tags", "untag", top)
	_, err := run(t, "tags", "untag", top)
	assert.Error(t, err, "Expected untagging an untagged path to fail")

	var entries []model.TagDirEntry
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "tags", "dirs", "1", "--json")), &entries))
	assert.Empty(t, entries)

	out := mustRun(t, "tags", "import", backup)
	assert.Equal(t, "0 owners created, 1 entries stored\n", out)

	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "tags", "dirs", "1", "--json")), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, top, entries[0].Path)

	mustRun(t, "tags", "rename-owner", "1", "holiday")
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "tags", "owners", "--json")), &owners))
	assert.Equal(t, "holiday", owners[0].Name)

	mustRun(t, "tags", "rm-owner", "1")
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "tags", "owners", "--json")), &owners))
	assert.Empty(t, owners)
}

func TestTagRejectsUnknownFiles(t *testing.T) {
	root := setup(t)
	mustRun(t, "tags", "add-owner", "trip")

	_, err := run(t, "tags", "tag", "1", filepath.Join(root, "notes.txt"))
	assert.ErrorContains(t, err, "not a media file")

	_, err = run(t, "tags", "tag", "zero", filepath.Join(root, "top.jpg"))
	assert.ErrorContains(t, err, "tag owner not found")

	mustRun(t, "tags", "tag", "trip", filepath.Join(root, "top.jpg"))
}

func TestCacheCommands(t *testing.T) {
	root := setup(t)

	mustRun(t, "list")
	mustRun(t, "list", filepath.Join(root, "Camera"))

	out := mustRun(t, "cache", "show", root)
	assert.True(t, strings.HasPrefix(out, root+": 2 items, updated "), "Unexpected header %q", out)

	mustRun(t, "cache", "clear")
	_, err := run(t, "cache", "show", root)
	assert.ErrorContains(t, err, "no snapshot")

	assert.Equal(t, "1 snapshots removed\n", mustRun(t, "cache", "clear", "--all"))

	_, err = run(t, "cache", "clear", "--all", root)
	assert.Error(t, err)
}

func TestGalleryCommand(t *testing.T) {
	root := setup(t)
	photo := filepath.Join(root, "Camera", "a.jpg")

	handoff := func(args ...string) handoffSummary {
		t.Helper()
		var sum handoffSummary
		out := mustRun(t, append([]string{"gallery", "--json"}, args...)...)
		require.NoError(t, json.Unmarshal([]byte(out), &sum))
		assert.Zero(t, sum.LiveAfter, "Expected the handle to be released after receiving")
		return sum
	}

	sum := handoff(photo)
	assert.Equal(t, "photos", sum.Records)
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, 1, sum.Index)
	assert.Equal(t, "b.mp4", sum.First)
	assert.Equal(t, "a.jpg", sum.Last)
	assert.Equal(t, int64(1), sum.Handle)
	assert.Positive(t, sum.Bytes)

	sum = handoff("--records", "videos", photo)
	assert.Equal(t, 1, sum.Count)
	assert.Equal(t, "b.mp4", sum.First)

	sum = handoff("--records", "items", photo)
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, 1, sum.Index)

	song := filepath.Join(root, "Camera", "Band - Song.mp3")
	require.NoError(t, os.WriteFile(song, []byte("x"), 0o644))
	sum = handoff(song)
	assert.Equal(t, "tracks", sum.Records)
	assert.Equal(t, 1, sum.Count)
	assert.Equal(t, "Band - Song", sum.First)

	_, err := run(t, "gallery", filepath.Join(root, "Camera"))
	assert.ErrorContains(t, err, "cannot be opened")
	_, err = run(t, "gallery", filepath.Join(root, "notes.txt"))
	assert.ErrorContains(t, err, "not a media file")
	_, err = run(t, "gallery", "--records", "bogus", photo)
	assert.ErrorContains(t, err, "unknown record schema")
}

func TestTagsOpenAndRemoveEntry(t *testing.T) {
	root := setup(t)
	song := filepath.Join(root, "song.mp3")
	require.NoError(t, os.WriteFile(song, []byte("x"), 0o644))

	assert.Equal(t, "1\n", mustRun(t, "tags", "add-owner", "trip"))
	for _, rel := range []string{"Camera/a.jpg", "top.jpg", "Camera/b.mp4", "song.mp3"} {
		mustRun(t, "tags", "tag", "trip", filepath.Join(root, rel))
	}

	open := func(path string) handoffSummary {
		t.Helper()
		var sum handoffSummary
		out := mustRun(t, "tags", "open", "--json", "trip", path)
		require.NoError(t, json.Unmarshal([]byte(out), &sum))
		assert.Zero(t, sum.LiveAfter)
		return sum
	}

	sum := open(filepath.Join(root, "top.jpg"))
	assert.Equal(t, "photos", sum.Records)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, 1, sum.Index)
	assert.Equal(t, "a.jpg", sum.First)
	assert.Equal(t, "b.mp4", sum.Last)
	assert.Equal(t, int64(1), sum.Handle)

	sum = open(song)
	assert.Equal(t, "tracks", sum.Records)
	assert.Equal(t, "song.mp3 - song", sum.First, "Expected the file name as artist")

	sum = open(filepath.Join(root, "Camera", "b.mp4"))
	assert.Equal(t, "videos", sum.Records)
	assert.Equal(t, "b.mp4", sum.First)

	_, err := run(t, "tags", "open", "trip", filepath.Join(root, "notes.txt"))
	assert.ErrorContains(t, err, "is not tagged")
	_, err = run(t, "tags", "open", "nobody", song)
	assert.ErrorContains(t, err, "not found")

	var entries []model.TagDirEntry
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "tags", "dirs", "--json", "trip")), &entries))
	require.Len(t, entries, 4)
	assert.Equal(t, filepath.Join(root, "top.jpg"), entries[1].Path)

	mustRun(t, "tags", "rm-entry", strconv.FormatInt(entries[1].ID, 10))
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "tags", "dirs", "--json", "1")), &entries))
	assert.Len(t, entries, 3)

	for _, it := range decodeItems(t, mustRun(t, "list", "--json")) {
		if it.Name == "top.jpg" {
			assert.False(t, it.HasTag, "Expected top.jpg to be untagged")
		}
	}

	_, err = run(t, "tags", "rm-entry", "x")
	assert.ErrorContains(t, err, "invalid id")
}

func TestFixTimesCommand(t *testing.T) {
	root := setup(t)
	mustRun(t, "list")

	var res struct {
		Directory string `json:"directory"`
		Updated   int    `json:"updated"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "fix-times", "--json")), &res))
	assert.Equal(t, root, res.Directory)
	assert.Equal(t, 1, res.Updated)

	info, err := os.Stat(filepath.Join(root, "Camera"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(baseTime.Add(20*time.Minute)), "Unexpected folder time %v", info.ModTime())

	_, err = run(t, "cache", "show", root)
	assert.Error(t, err, "Expected fix-times to drop the snapshot")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "media-catalog dev"), "Unexpected version line %q", out)
}

func TestMissingConfigFile(t *testing.T) {
	setup(t)
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "list")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"/a/very/long/path.jpg", 10, "...ath.jpg"},
		{"exact", 5, "exact"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d): expected %q, got %q", tt.in, tt.n, tt.want, got)
		}
	}
}

func TestPrinterTable(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{w: &buf, header: true, width: 24}

	err := p.Table([]string{"ID", "PATH"}, [][]string{{"1", "/media/some/long/folder/name.jpg"}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID  PATH", lines[0])
	assert.Equal(t, "1   ...g/folder/name.jpg", lines[1])
}
