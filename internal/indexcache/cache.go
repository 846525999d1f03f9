package indexcache

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"media-catalog/internal/database"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
	"media-catalog/internal/model"
)

// Store is the persistence the cache needs. *database.Database satisfies it.
type Store interface {
	GetSnapshot(ctx context.Context, dir string) (*database.Snapshot, error)
	PutSnapshot(ctx context.Context, dir string, items []byte, count int) error
	DeleteSnapshot(ctx context.Context, dir string) error
	DeleteAllSnapshots(ctx context.Context) (int64, error)
	SnapshotPaths(ctx context.Context) ([]string, error)
}

// Entry describes one cached directory.
type Entry struct {
	Path      string
	Items     []model.FileItem
	UpdatedAt time.Time
}

// Cache is the directory snapshot store.
type Cache struct {
	store Store
}

// New creates a Cache backed by store.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Get returns the snapshot for dir. The bool is false when nothing is cached.
// A stored empty listing is a hit with a non-nil empty slice.
func (c *Cache) Get(ctx context.Context, dir string) ([]model.FileItem, bool, error) {
	entry, err := c.Lookup(ctx, dir)
	if err != nil || entry == nil {
		return nil, false, err
	}
	return entry.Items, true, nil
}

// Lookup is Get with the snapshot's metadata.
func (c *Cache) Lookup(ctx context.Context, dir string) (*Entry, error) {
	key, err := normalize(dir)
	if err != nil {
		return nil, err
	}

	snap, err := c.store.GetSnapshot(ctx, key)
	if err != nil {
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to read cache for %s: %w", key, err)
	}
	if snap == nil {
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}

	items, err := model.DecodeFileItems(snap.Items)
	if err != nil {
		// An unreadable row is treated as absent; the next Put replaces it.
		logging.Warn("Discarding malformed cache snapshot for %s: %v", key, err)
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		return nil, nil
	}

	metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
	return &Entry{Path: key, Items: items, UpdatedAt: snap.UpdatedAt}, nil
}

// Put replaces the snapshot for dir with items.
func (c *Cache) Put(ctx context.Context, dir string, items []model.FileItem) error {
	key, err := normalize(dir)
	if err != nil {
		return err
	}
	if items == nil {
		items = []model.FileItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		metrics.CachePutsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to encode snapshot for %s: %w", key, err)
	}

	if err := c.store.PutSnapshot(ctx, key, data, len(items)); err != nil {
		metrics.CachePutsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to write cache for %s: %w", key, err)
	}

	metrics.CachePutsTotal.WithLabelValues("success").Inc()
	metrics.CacheSnapshotItems.Observe(float64(len(items)))
	logging.Debug("Cached %d items for %s", len(items), key)
	return nil
}

// Clear drops the snapshot for dir.
func (c *Cache) Clear(ctx context.Context, dir string) error {
	key, err := normalize(dir)
	if err != nil {
		return err
	}
	if err := c.store.DeleteSnapshot(ctx, key); err != nil {
		return fmt.Errorf("failed to clear cache for %s: %w", key, err)
	}
	return nil
}

// ClearAll drops every snapshot and returns how many were removed.
func (c *Cache) ClearAll(ctx context.Context) (int64, error) {
	n, err := c.store.DeleteAllSnapshots(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	logging.Info("Cleared %d cached directories", n)
	return n, nil
}

// Paths lists every cached directory.
func (c *Cache) Paths(ctx context.Context) ([]string, error) {
	paths, err := c.store.SnapshotPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached directories: %w", err)
	}
	return paths, nil
}

func normalize(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("empty cache key")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return abs, nil
}
