package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"media-catalog/internal/mediatypes"
	"media-catalog/internal/model"
)

// ImportResult summarizes a tag import.
type ImportResult struct {
	OwnersCreated int
	EntriesStored int
}

// InsertOwner creates a tag owner and returns its id.
func (d *Database) InsertOwner(ctx context.Context, name string) (int64, error) {
	done := observeQuery("tag_add_owner")

	name = strings.TrimSpace(name)
	if name == "" {
		err := errors.New("owner name cannot be empty")
		done(err)
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := insertOwner(ctx, d.db, name)
	done(err)
	return id, err
}

// DeleteOwner removes an owner and, through the foreign key, all of its
// entries. It reports whether the owner existed.
func (d *Database) DeleteOwner(ctx context.Context, id int64) (bool, error) {
	done := observeQuery("tag_remove_owner")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "DELETE FROM tag_owners WHERE id = ?", id)
	if err != nil {
		done(err)
		return false, fmt.Errorf("failed to delete owner %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	done(err)
	return n > 0, err
}

// RenameOwner changes an owner's display name.
func (d *Database) RenameOwner(ctx context.Context, id int64, name string) (bool, error) {
	done := observeQuery("tag_rename_owner")

	name = strings.TrimSpace(name)
	if name == "" {
		err := errors.New("owner name cannot be empty")
		done(err)
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "UPDATE tag_owners SET name = ? WHERE id = ?", name, id)
	if err != nil {
		done(err)
		return false, fmt.Errorf("failed to rename owner %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	done(err)
	return n > 0, err
}

// Owners returns every owner with its entry count, in creation order.
func (d *Database) Owners(ctx context.Context) ([]model.TagOwner, error) {
	done := observeQuery("tag_owners")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT o.id, o.name, COUNT(t.id)
		FROM tag_owners o
		LEFT JOIN tag_dirs t ON t.owner_id = o.id
		GROUP BY o.id
		ORDER BY o.id
	`)
	if err != nil {
		done(err)
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	owners := []model.TagOwner{}
	for rows.Next() {
		var o model.TagOwner
		if err := rows.Scan(&o.ID, &o.Name, &o.Count); err != nil {
			done(err)
			return nil, err
		}
		owners = append(owners, o)
	}
	err = rows.Err()
	done(err)
	return owners, err
}

// OwnerByID returns the owner with id, or nil when it does not exist.
func (d *Database) OwnerByID(ctx context.Context, id int64) (*model.TagOwner, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return scanOwner(d.db.QueryRowContext(ctx, `
		SELECT o.id, o.name, (SELECT COUNT(*) FROM tag_dirs t WHERE t.owner_id = o.id)
		FROM tag_owners o WHERE o.id = ?
	`, id))
}

// OwnerByName returns the oldest owner called name, or nil when none exists.
func (d *Database) OwnerByName(ctx context.Context, name string) (*model.TagOwner, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return ownerByName(ctx, d.db, name)
}

// PutEntry stores entry, moving the path to entry.OwnerID if another owner
// already tagged it. It returns the entry id.
func (d *Database) PutEntry(ctx context.Context, entry model.TagDirEntry) (int64, error) {
	done := observeQuery("tag_put_entry")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := putEntry(ctx, d.db, entry)
	done(err)
	return id, err
}

// DeleteEntryByPath removes the tag on path, reporting whether one existed.
func (d *Database) DeleteEntryByPath(ctx context.Context, path string) (bool, error) {
	done := observeQuery("tag_delete_entry")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "DELETE FROM tag_dirs WHERE path = ?", path)
	if err != nil {
		done(err)
		return false, fmt.Errorf("failed to delete tag for %s: %w", path, err)
	}
	n, err := result.RowsAffected()
	done(err)
	return n > 0, err
}

// DeleteEntry removes a tag entry by id and returns the removed entry's path.
// The path is empty when no entry had that id.
func (d *Database) DeleteEntry(ctx context.Context, id int64) (string, error) {
	done := observeQuery("tag_delete_entry")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var path string
	err := d.db.QueryRowContext(ctx, "DELETE FROM tag_dirs WHERE id = ? RETURNING path", id).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		done(nil)
		return "", nil
	}
	if err != nil {
		err = fmt.Errorf("failed to delete tag entry %d: %w", id, err)
	}
	done(err)
	return path, err
}

// Entries returns the entries tagged under ownerID, oldest first.
func (d *Database) Entries(ctx context.Context, ownerID int64) ([]model.TagDirEntry, error) {
	done := observeQuery("tag_entries")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	entries, err := entriesFor(ctx, d.db, ownerID)
	done(err)
	return entries, err
}

// TaggedPaths returns every tagged path across all owners.
func (d *Database) TaggedPaths(ctx context.Context) ([]string, error) {
	done := observeQuery("tag_paths")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT path FROM tag_dirs ORDER BY id")
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

// ExportTags returns every owner with its entries, in creation order.
func (d *Database) ExportTags(ctx context.Context) ([]model.TagFull, error) {
	owners, err := d.Owners(ctx)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	full := make([]model.TagFull, 0, len(owners))
	for _, o := range owners {
		entries, err := entriesFor(ctx, d.db, o.ID)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			entries[i].ID = 0
			entries[i].OwnerID = 0
		}
		full = append(full, model.TagFull{Name: o.Name, Entries: entries})
	}
	return full, nil
}

// ImportTags merges tags into the store in one transaction. Owners are matched
// by name and created when missing. Entries whose path is already tagged move
// to the imported owner.
func (d *Database) ImportTags(ctx context.Context, tags []model.TagFull) (ImportResult, error) {
	done := observeQuery("tag_import")

	d.mu.Lock()
	defer d.mu.Unlock()

	var res ImportResult
	err := d.withTx(ctx, func(ctx context.Context, tx DBTX) error {
		for _, t := range tags {
			name := strings.TrimSpace(t.Name)
			if name == "" {
				continue
			}
			owner, err := ownerByName(ctx, tx, name)
			if err != nil {
				return err
			}
			var ownerID int64
			if owner != nil {
				ownerID = owner.ID
			} else {
				if ownerID, err = insertOwner(ctx, tx, name); err != nil {
					return err
				}
				res.OwnersCreated++
			}
			for _, e := range t.Entries {
				if e.Path == "" {
					continue
				}
				e.OwnerID = ownerID
				if _, err := putEntry(ctx, tx, e); err != nil {
					return err
				}
				res.EntriesStored++
			}
		}
		return nil
	})
	done(err)
	if err != nil {
		return ImportResult{}, err
	}
	return res, nil
}

func insertOwner(ctx context.Context, q DBTX, name string) (int64, error) {
	result, err := q.ExecContext(ctx, "INSERT INTO tag_owners (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to create owner: %w", err)
	}
	return result.LastInsertId()
}

func ownerByName(ctx context.Context, q DBTX, name string) (*model.TagOwner, error) {
	return scanOwner(q.QueryRowContext(ctx, `
		SELECT o.id, o.name, (SELECT COUNT(*) FROM tag_dirs t WHERE t.owner_id = o.id)
		FROM tag_owners o WHERE o.name = ?
		ORDER BY o.id LIMIT 1
	`, name))
}

func scanOwner(row *sql.Row) (*model.TagOwner, error) {
	var o model.TagOwner
	err := row.Scan(&o.ID, &o.Name, &o.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read owner: %w", err)
	}
	return &o, nil
}

func putEntry(ctx context.Context, q DBTX, e model.TagDirEntry) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO tag_dirs (owner_id, path, name, kind, size)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			owner_id = excluded.owner_id,
			name = excluded.name,
			kind = excluded.kind,
			size = excluded.size
		RETURNING id
	`, e.OwnerID, e.Path, e.Name, int(e.Kind), e.Size).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to store tag for %s: %w", e.Path, err)
	}
	return id, nil
}

func entriesFor(ctx context.Context, q DBTX, ownerID int64) ([]model.TagDirEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, owner_id, name, path, kind, size
		FROM tag_dirs WHERE owner_id = ?
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	entries := []model.TagDirEntry{}
	for rows.Next() {
		var (
			e    model.TagDirEntry
			kind int
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Path, &kind, &e.Size); err != nil {
			return nil, err
		}
		e.Kind = mediatypes.KindFromInt(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
