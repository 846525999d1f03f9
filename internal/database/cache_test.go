package database

import (
	"context"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	db, _ := setupTestDB(t)

	snap, err := db.GetSnapshot(ctx, "/media/photos")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if snap != nil {
		t.Fatalf("Expected no snapshot, got %+v", snap)
	}

	payload := []byte(`[{"name":"a.jpg"}]`)
	if err := db.PutSnapshot(ctx, "/media/photos", payload, 1); err != nil {
		t.Fatalf("PutSnapshot failed: %v", err)
	}

	snap, err = db.GetSnapshot(ctx, "/media/photos")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if snap == nil {
		t.Fatal("Expected snapshot after put")
	}
	if string(snap.Items) != string(payload) {
		t.Errorf("Expected items %s, got %s", payload, snap.Items)
	}
	if snap.ItemCount != 1 {
		t.Errorf("Expected count 1, got %d", snap.ItemCount)
	}
	if snap.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be set")
	}
}

func TestSnapshotReplace(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	db, _ := setupTestDB(t)

	if err := db.PutSnapshot(ctx, "/media", []byte("[1]"), 1); err != nil {
		t.Fatalf("PutSnapshot failed: %v", err)
	}
	if err := db.PutSnapshot(ctx, "/media", []byte("[]"), 0); err != nil {
		t.Fatalf("PutSnapshot failed: %v", err)
	}

	snap, err := db.GetSnapshot(ctx, "/media")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if snap == nil || string(snap.Items) != "[]" || snap.ItemCount != 0 {
		t.Errorf("Expected empty replacement snapshot, got %+v", snap)
	}

	paths, err := db.SnapshotPaths(ctx)
	if err != nil {
		t.Fatalf("SnapshotPaths failed: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("Expected a single cached path, got %v", paths)
	}
}

func TestSnapshotDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	db, _ := setupTestDB(t)

	for _, p := range []string{"/media/b", "/media/a", "/media/c"} {
		if err := db.PutSnapshot(ctx, p, []byte("[]"), 0); err != nil {
			t.Fatalf("PutSnapshot failed: %v", err)
		}
	}

	paths, err := db.SnapshotPaths(ctx)
	if err != nil {
		t.Fatalf("SnapshotPaths failed: %v", err)
	}
	want := []string{"/media/a", "/media/b", "/media/c"}
	if len(paths) != len(want) {
		t.Fatalf("Expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("Expected paths[%d] = %s, got %s", i, want[i], paths[i])
		}
	}

	if err := db.DeleteSnapshot(ctx, "/media/b"); err != nil {
		t.Fatalf("DeleteSnapshot failed: %v", err)
	}
	if err := db.DeleteSnapshot(ctx, "/media/missing"); err != nil {
		t.Errorf("DeleteSnapshot of missing path failed: %v", err)
	}
	if snap, _ := db.GetSnapshot(ctx, "/media/b"); snap != nil {
		t.Error("Expected /media/b to be removed")
	}

	n, err := db.DeleteAllSnapshots(ctx)
	if err != nil {
		t.Fatalf("DeleteAllSnapshots failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 rows removed, got %d", n)
	}
}
