package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Snapshot is one cached directory listing in its encoded form.
type Snapshot struct {
	Path      string
	Items     []byte
	ItemCount int
	UpdatedAt time.Time
}

// GetSnapshot returns the snapshot stored for dir, or nil when none exists.
func (d *Database) GetSnapshot(ctx context.Context, dir string) (*Snapshot, error) {
	done := observeQuery("cache_get")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		snap      Snapshot
		updatedAt int64
	)
	err := d.db.QueryRowContext(ctx, `
		SELECT directory_path, items, item_count, updated_at
		FROM file_cache WHERE directory_path = ?
	`, dir).Scan(&snap.Path, &snap.Items, &snap.ItemCount, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		done(nil)
		return nil, nil
	}
	if err != nil {
		err = fmt.Errorf("failed to read snapshot for %s: %w", dir, err)
		done(err)
		return nil, err
	}

	snap.UpdatedAt = time.Unix(updatedAt, 0)
	done(nil)
	return &snap, nil
}

// PutSnapshot replaces the snapshot stored for dir.
func (d *Database) PutSnapshot(ctx context.Context, dir string, items []byte, count int) error {
	done := observeQuery("cache_put")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO file_cache (directory_path, items, item_count, updated_at)
		VALUES (?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(directory_path) DO UPDATE SET
			items = excluded.items,
			item_count = excluded.item_count,
			updated_at = excluded.updated_at
	`, dir, items, count)
	if err != nil {
		err = fmt.Errorf("failed to store snapshot for %s: %w", dir, err)
	}
	done(err)
	return err
}

// DeleteSnapshot removes the snapshot for dir. Missing rows are not an error.
func (d *Database) DeleteSnapshot(ctx context.Context, dir string) error {
	done := observeQuery("cache_clear")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, "DELETE FROM file_cache WHERE directory_path = ?", dir)
	done(err)
	return err
}

// DeleteAllSnapshots empties the cache and returns how many rows were removed.
func (d *Database) DeleteAllSnapshots(ctx context.Context) (int64, error) {
	done := observeQuery("cache_clear_all")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "DELETE FROM file_cache")
	if err != nil {
		done(err)
		return 0, err
	}
	n, err := result.RowsAffected()
	done(err)
	return n, err
}

// SnapshotPaths lists every cached directory in path order.
func (d *Database) SnapshotPaths(ctx context.Context) ([]string, error) {
	done := observeQuery("cache_paths")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT directory_path FROM file_cache ORDER BY directory_path")
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			done(err)
			return nil, err
		}
		paths = append(paths, p)
	}
	err = rows.Err()
	done(err)
	return paths, err
}
