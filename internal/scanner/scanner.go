package scanner

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"media-catalog/internal/filesystem"
	"media-catalog/internal/logging"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/metrics"
	"media-catalog/internal/model"
	"media-catalog/internal/workers"
)

// maxStatWorkers caps concurrent per-entry stats within one directory.
const maxStatWorkers = 16

// TagChecker answers whether a path is currently tagged.
type TagChecker interface {
	IsTagged(path string) bool
}

// Options configures a Scanner.
type Options struct {
	// Root is the storage root. Relative Reserved entries resolve against it.
	Root       string
	Extensions mediatypes.ExtensionSets
	// Reserved paths are excluded along with everything below them.
	Reserved []string
	// Workers overrides the computed stat fan-out when positive.
	Workers int
	Retry   filesystem.RetryConfig
	// Tags, when set, marks tagged items with HasTag.
	Tags TagChecker
}

// Scanner lists and searches directories. It holds no mutable state and is
// safe for concurrent use.
type Scanner struct {
	exts     mediatypes.ExtensionSets
	reserved map[string]struct{}
	workers  int
	retry    filesystem.RetryConfig
	tags     TagChecker
}

// New creates a Scanner from opts.
func New(opts Options) *Scanner {
	reserved := make(map[string]struct{}, len(opts.Reserved))
	for _, r := range opts.Reserved {
		if r == "" {
			continue
		}
		if !filepath.IsAbs(r) {
			r = filepath.Join(opts.Root, r)
		}
		reserved[filepath.Clean(r)] = struct{}{}
	}

	retry := opts.Retry
	if retry.MaxRetries == 0 && retry.InitialBackoff == 0 {
		retry = filesystem.DefaultRetryConfig()
	}

	return &Scanner{
		exts:     opts.Extensions.Normalize(),
		reserved: reserved,
		workers:  workers.ForIO(maxStatWorkers, opts.Workers),
		retry:    retry,
		tags:     opts.Tags,
	}
}

// List returns the filtered, sorted contents of dir.
func (s *Scanner) List(ctx context.Context, dir string) (items []model.FileItem, err error) {
	start := time.Now()
	defer func() { record("list", start, len(items), err) }()

	dir, err = filepath.Abs(dir)
	if err != nil {
		return []model.FileItem{}, &ScanError{Op: "list", Path: dir, Err: err}
	}
	if s.inReserved(dir) {
		return []model.FileItem{}, &ScanError{Op: "list", Path: dir, Err: ErrReserved}
	}

	items, err = s.readDir(ctx, "list", dir)
	if err != nil {
		var scanErr *ScanError
		if errors.As(err, &scanErr) {
			return []model.FileItem{}, err
		}
		return nil, err
	}

	sortItems(items)
	return items, nil
}

// Search walks root depth-first and returns every entry whose name contains
// query, case-insensitively, with the same filters and ordering as List.
// Directories are descended into whether or not their own name matches.
func (s *Scanner) Search(ctx context.Context, root, query string) (items []model.FileItem, err error) {
	start := time.Now()
	defer func() { record("search", start, len(items), err) }()

	root, err = filepath.Abs(root)
	if err != nil {
		return []model.FileItem{}, &ScanError{Op: "search", Path: root, Err: err}
	}
	if s.inReserved(root) {
		return []model.FileItem{}, &ScanError{Op: "search", Path: root, Err: ErrReserved}
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	visited := make(map[string]struct{})
	items = []model.FileItem{}

	if err := s.search(ctx, root, needle, visited, &items, true); err != nil {
		var scanErr *ScanError
		if errors.As(err, &scanErr) {
			return []model.FileItem{}, err
		}
		return nil, err
	}

	sortItems(items)
	return items, nil
}

func (s *Scanner) search(ctx context.Context, dir, needle string, visited map[string]struct{}, out *[]model.FileItem, isRoot bool) error {
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		if _, seen := visited[real]; seen {
			return nil
		}
		visited[real] = struct{}{}
	}

	entries, err := s.readDir(ctx, "search", dir)
	if err != nil {
		var scanErr *ScanError
		if errors.As(err, &scanErr) && !isRoot {
			logging.Debug("search: skipping %s: %v", dir, err)
			return nil
		}
		return err
	}

	for _, item := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if item.IsFolder() {
			if err := s.search(ctx, item.Path, needle, visited, out, false); err != nil {
				return err
			}
		}
		if strings.Contains(strings.ToLower(item.Name), needle) {
			*out = append(*out, item)
		}
	}
	return nil
}

// readDir reads dir and evaluates every entry, fanning the stat calls out
// over a bounded pool. Kept items stay in enumeration order.
func (s *Scanner) readDir(ctx context.Context, op, dir string) ([]model.FileItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := filesystem.StatWithRetry(dir, s.retry)
	if err != nil {
		return nil, &ScanError{Op: op, Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanError{Op: op, Path: dir, Err: ErrNotDirectory}
	}

	entries, err := filesystem.ReadDirWithRetry(dir, s.retry)
	if err != nil {
		if len(entries) == 0 {
			return nil, &ScanError{Op: op, Path: dir, Err: err}
		}
		logging.Warn("Partial read of %s: %v", dir, err)
	}

	slots := make([]*model.FileItem, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, entry := range entries {
		if err := gctx.Err(); err != nil {
			break
		}
		if filesystem.IsHidden(entry.Name()) {
			metrics.ScannerEntriesSkipped.WithLabelValues("hidden").Inc()
			continue
		}

		full := filepath.Join(dir, entry.Name())
		if s.isReserved(full) {
			metrics.ScannerEntriesSkipped.WithLabelValues("reserved").Inc()
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if item, ok := s.evaluate(full); ok {
				slots[i] = &item
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]model.FileItem, 0, len(entries))
	for _, it := range slots {
		if it != nil {
			items = append(items, *it)
		}
	}
	return items, nil
}

// evaluate applies the per-entry filter and builds the item.
func (s *Scanner) evaluate(full string) (model.FileItem, bool) {
	info, err := filesystem.StatWithRetry(full, s.retry)
	if err != nil {
		logging.Debug("Skipping %s: %v", full, err)
		metrics.ScannerEntriesSkipped.WithLabelValues("stat_error").Inc()
		return model.FileItem{}, false
	}

	isDir := info.IsDir()
	if !filesystem.CanRead(full, isDir) {
		metrics.ScannerEntriesSkipped.WithLabelValues("unreadable").Inc()
		return model.FileItem{}, false
	}

	var size int64
	kind := s.exts.Classify(info.Name(), isDir)

	switch {
	case isDir:
		if !filesystem.HasEntries(full) {
			metrics.ScannerEntriesSkipped.WithLabelValues("empty_dir").Inc()
			return model.FileItem{}, false
		}
		size = filesystem.CountEntries(full)
	case kind == mediatypes.KindUnknown:
		metrics.ScannerEntriesSkipped.WithLabelValues("extension").Inc()
		return model.FileItem{}, false
	case !info.Mode().IsRegular():
		metrics.ScannerEntriesSkipped.WithLabelValues("extension").Inc()
		return model.FileItem{}, false
	default:
		size = info.Size()
	}

	item := model.NewFileItem(kind, full, info.ModTime(), size, true)
	if s.tags != nil {
		item.HasTag = s.tags.IsTagged(full)
	}
	return item, true
}

func (s *Scanner) isReserved(path string) bool {
	if len(s.reserved) == 0 {
		return false
	}
	_, ok := s.reserved[filepath.Clean(path)]
	return ok
}

// inReserved reports whether path is a reserved directory or below one.
func (s *Scanner) inReserved(path string) bool {
	for r := range s.reserved {
		if filesystem.IsWithin(r, path) {
			return true
		}
	}
	return false
}

// sortItems orders folders first, then everything else, each group by
// modification time descending. The sort is stable so equal times keep
// enumeration order.
func sortItems(items []model.FileItem) {
	sort.SliceStable(items, func(i, j int) bool {
		fi, fj := items[i].IsFolder(), items[j].IsFolder()
		if fi != fj {
			return fi
		}
		return items[i].ModifiedAt > items[j].ModifiedAt
	})
}

func record(op string, start time.Time, n int, err error) {
	status := "success"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = "canceled"
	case err != nil:
		status = "error"
	}
	metrics.ScannerOperationsTotal.WithLabelValues(op, status).Inc()
	metrics.ScannerOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.ScannerItemsReturned.WithLabelValues(op).Observe(float64(n))
	}
}
