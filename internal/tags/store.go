package tags

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"media-catalog/internal/database"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
	"media-catalog/internal/model"
)

var (
	// ErrOwnerNotFound is returned for operations on an owner id that does not exist.
	ErrOwnerNotFound = errors.New("tag owner not found")
	// ErrEmptyName is returned when an owner name is blank.
	ErrEmptyName = errors.New("tag owner name is empty")
)

// Repository is the persistence the store needs. *database.Database satisfies it.
type Repository interface {
	InsertOwner(ctx context.Context, name string) (int64, error)
	DeleteOwner(ctx context.Context, id int64) (bool, error)
	RenameOwner(ctx context.Context, id int64, name string) (bool, error)
	Owners(ctx context.Context) ([]model.TagOwner, error)
	OwnerByID(ctx context.Context, id int64) (*model.TagOwner, error)
	OwnerByName(ctx context.Context, name string) (*model.TagOwner, error)
	PutEntry(ctx context.Context, entry model.TagDirEntry) (int64, error)
	DeleteEntryByPath(ctx context.Context, path string) (bool, error)
	DeleteEntry(ctx context.Context, id int64) (string, error)
	Entries(ctx context.Context, ownerID int64) ([]model.TagDirEntry, error)
	TaggedPaths(ctx context.Context) ([]string, error)
	ExportTags(ctx context.Context) ([]model.TagFull, error)
	ImportTags(ctx context.Context, tags []model.TagFull) (database.ImportResult, error)
}

// Store is the tag store.
type Store struct {
	repo Repository

	mu     sync.RWMutex
	tagged map[string]struct{}
}

// New creates a Store and loads the tagged-path set from repo.
func New(ctx context.Context, repo Repository) (*Store, error) {
	s := &Store{
		repo:   repo,
		tagged: make(map[string]struct{}),
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rebuilds the in-memory tagged-path set from the database.
func (s *Store) Reload(ctx context.Context) error {
	paths, err := s.repo.TaggedPaths(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tagged paths: %w", err)
	}

	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}

	s.mu.Lock()
	s.tagged = set
	s.mu.Unlock()

	metrics.TaggedPaths.Set(float64(len(set)))
	logging.Debug("Loaded %d tagged paths", len(set))
	return nil
}

// IsTagged reports whether path is tagged under any owner.
func (s *Store) IsTagged(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tagged[path]
	return ok
}

// AddOwner creates an owner and returns its id.
func (s *Store) AddOwner(ctx context.Context, name string) (id int64, err error) {
	defer func() { record("add_owner", err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyName
	}
	id, err = s.repo.InsertOwner(ctx, name)
	if err != nil {
		return 0, err
	}
	s.refreshOwnerGauge(ctx)
	return id, nil
}

// RemoveOwner deletes an owner together with every entry tagged under it.
func (s *Store) RemoveOwner(ctx context.Context, id int64) (err error) {
	defer func() { record("remove_owner", err) }()

	entries, err := s.repo.Entries(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.repo.DeleteOwner(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrOwnerNotFound, id)
	}

	s.mu.Lock()
	for _, e := range entries {
		delete(s.tagged, e.Path)
	}
	n := len(s.tagged)
	s.mu.Unlock()

	metrics.TaggedPaths.Set(float64(n))
	s.refreshOwnerGauge(ctx)
	return nil
}

// RenameOwner changes an owner's name.
func (s *Store) RenameOwner(ctx context.Context, id int64, name string) (err error) {
	defer func() { record("rename_owner", err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	ok, err := s.repo.RenameOwner(ctx, id, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrOwnerNotFound, id)
	}
	return nil
}

// Owners lists every owner with its entry count, in creation order.
func (s *Store) Owners(ctx context.Context) ([]model.TagOwner, error) {
	return s.repo.Owners(ctx)
}

// Owner returns the owner with id.
func (s *Store) Owner(ctx context.Context, id int64) (model.TagOwner, error) {
	o, err := s.repo.OwnerByID(ctx, id)
	if err != nil {
		return model.TagOwner{}, err
	}
	if o == nil {
		return model.TagOwner{}, fmt.Errorf("%w: %d", ErrOwnerNotFound, id)
	}
	return *o, nil
}

// ResolveOwner returns the owner ref names: an id when ref is a number,
// otherwise the oldest owner with that name.
func (s *Store) ResolveOwner(ctx context.Context, ref string) (model.TagOwner, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.Owner(ctx, id)
	}
	if ref == "" {
		return model.TagOwner{}, ErrEmptyName
	}

	o, err := s.repo.OwnerByName(ctx, ref)
	if err != nil {
		return model.TagOwner{}, err
	}
	if o == nil {
		return model.TagOwner{}, fmt.Errorf("%w: %q", ErrOwnerNotFound, ref)
	}
	return *o, nil
}

// Tag records item under ownerID. Tagging an already tagged path replaces the
// existing entry, moving it to ownerID if needed.
func (s *Store) Tag(ctx context.Context, ownerID int64, item model.FileItem) (entry model.TagDirEntry, err error) {
	defer func() { record("tag", err) }()

	if _, err := s.Owner(ctx, ownerID); err != nil {
		return model.TagDirEntry{}, err
	}

	entry = model.TagEntryFromItem(ownerID, item)
	id, err := s.repo.PutEntry(ctx, entry)
	if err != nil {
		return model.TagDirEntry{}, err
	}
	entry.ID = id

	s.mark(item.Path, true)
	return entry, nil
}

// Untag removes the tag on path. It reports whether a tag existed.
func (s *Store) Untag(ctx context.Context, path string) (removed bool, err error) {
	defer func() { record("untag", err) }()

	removed, err = s.repo.DeleteEntryByPath(ctx, path)
	if err != nil {
		return false, err
	}
	s.mark(path, false)
	return removed, nil
}

// Toggle untags item when it is tagged and tags it under ownerID otherwise.
// It returns the new tagged state.
func (s *Store) Toggle(ctx context.Context, ownerID int64, item model.FileItem) (bool, error) {
	if s.IsTagged(item.Path) {
		_, err := s.Untag(ctx, item.Path)
		return false, err
	}
	if _, err := s.Tag(ctx, ownerID, item); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveEntry deletes a tag entry by id.
func (s *Store) RemoveEntry(ctx context.Context, id int64) (err error) {
	defer func() { record("untag", err) }()

	path, err := s.repo.DeleteEntry(ctx, id)
	if err != nil {
		return err
	}
	if path != "" {
		s.mark(path, false)
	}
	return nil
}

// DirsFor returns the entries under ownerID in insertion order. A non-empty
// filter keeps only entries whose name contains it, ignoring case.
func (s *Store) DirsFor(ctx context.Context, ownerID int64, filter string) ([]model.TagDirEntry, error) {
	entries, err := s.repo.Entries(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return entries, nil
	}

	out := make([]model.TagDirEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), filter) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ExportAll returns every owner with its entries.
func (s *Store) ExportAll(ctx context.Context) (tags []model.TagFull, err error) {
	defer func() { record("export", err) }()
	return s.repo.ExportTags(ctx)
}

// ImportAll merges tags into the store. Owners are matched by name.
func (s *Store) ImportAll(ctx context.Context, tags []model.TagFull) (res database.ImportResult, err error) {
	defer func() { record("import", err) }()

	res, err = s.repo.ImportTags(ctx, tags)
	if err != nil {
		return database.ImportResult{}, err
	}
	if err = s.Reload(ctx); err != nil {
		return res, err
	}
	s.refreshOwnerGauge(ctx)
	logging.Info("Imported tags: %d owners created, %d entries stored", res.OwnersCreated, res.EntriesStored)
	return res, nil
}

type backup struct {
	Tags []model.TagFull `json:"tags"`
}

// ExportJSON writes every owner and its entries as a backup document.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	tags, err := s.ExportAll(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup{Tags: tags}); err != nil {
		return fmt.Errorf("failed to write tag backup: %w", err)
	}
	return nil
}

// ImportJSON reads a backup document written by ExportJSON and merges it.
func (s *Store) ImportJSON(ctx context.Context, r io.Reader) (database.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return database.ImportResult{}, fmt.Errorf("failed to read tag backup: %w", err)
	}
	tags, err := model.DecodeTagBackup(data)
	if err != nil {
		return database.ImportResult{}, fmt.Errorf("failed to decode tag backup: %w", err)
	}
	return s.ImportAll(ctx, tags)
}

func (s *Store) mark(path string, tagged bool) {
	s.mu.Lock()
	if tagged {
		s.tagged[path] = struct{}{}
	} else {
		delete(s.tagged, path)
	}
	n := len(s.tagged)
	s.mu.Unlock()
	metrics.TaggedPaths.Set(float64(n))
}

func (s *Store) refreshOwnerGauge(ctx context.Context) {
	owners, err := s.repo.Owners(ctx)
	if err != nil {
		logging.Debug("Skipping owner gauge refresh: %v", err)
		return
	}
	metrics.TagOwners.Set(float64(len(owners)))
}

func record(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.TagOperationsTotal.WithLabelValues(op, status).Inc()
}
