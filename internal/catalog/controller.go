package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"media-catalog/internal/filesystem"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
	"media-catalog/internal/model"
	"media-catalog/internal/scanner"
	"media-catalog/internal/transfer"
)

var (
	// ErrBusy is returned when a request is dropped because another load or
	// search is in flight.
	ErrBusy = errors.New("catalog operation already in flight")
	// ErrAtRoot is returned by Up at the configured root boundary.
	ErrAtRoot = errors.New("already at the root directory")
	// ErrOutsideRoot is returned when navigating outside a bounded root.
	ErrOutsideRoot = errors.New("path is outside the storage root")
	// ErrNoOwner is returned by ToggleTag when no tag owner is selected.
	ErrNoOwner = errors.New("no tag owner selected")
	// ErrNotViewable is returned by OpenViewer for folders and unknown files.
	ErrNotViewable = errors.New("item cannot be opened in a viewer")
	// ErrNoTagDirs is returned by OpenTagViewer when Deps.TagDirs is nil.
	ErrNoTagDirs = errors.New("no tag directory configured")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("catalog controller is closed")
)

// State is the controller's position in its load/search cycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateSearching
	StateSearchLoaded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateSearching:
		return "searching"
	case StateSearchLoaded:
		return "search_loaded"
	default:
		return "unknown"
	}
}

// Lister produces directory listings and search results.
// *scanner.Scanner and *scanner.Shared satisfy it.
type Lister interface {
	List(ctx context.Context, dir string) ([]model.FileItem, error)
	Search(ctx context.Context, root, query string) ([]model.FileItem, error)
}

// SnapshotCache stores the last listing of each directory.
// *indexcache.Cache satisfies it.
type SnapshotCache interface {
	Get(ctx context.Context, dir string) ([]model.FileItem, bool, error)
	Put(ctx context.Context, dir string, items []model.FileItem) error
	Clear(ctx context.Context, dir string) error
}

// TagToggler answers and flips tag membership. *tags.Store satisfies it.
type TagToggler interface {
	IsTagged(path string) bool
	Toggle(ctx context.Context, ownerID int64, item model.FileItem) (bool, error)
}

// TagDirectory lists the entries tagged for an owner. *tags.Store satisfies it.
type TagDirectory interface {
	DirsFor(ctx context.Context, ownerID int64, filter string) ([]model.TagDirEntry, error)
}

// Deps are the collaborators a Controller is built from.
type Deps struct {
	Scanner Lister
	Cache   SnapshotCache
	// Tags is optional. Without it ToggleTag fails and HasTag comes only
	// from the scanner.
	Tags TagToggler
	// TagDirs is optional and only needed by OpenTagViewer.
	TagDirs TagDirectory
	// Allocator carries gallery hand-offs. A private one is created when nil.
	Allocator *transfer.Allocator
}

// Options configures a Controller.
type Options struct {
	// Root is the storage root and the first directory Open loads.
	Root string
	// RootBoundary refuses Up at Root and navigation outside it.
	RootBoundary bool
	// Watch refreshes the current directory when entries are created,
	// removed or renamed in it.
	Watch         bool
	WatchDebounce time.Duration
}

type loadMode int

const (
	// modeRevalidate publishes the cached snapshot, then always scans.
	modeRevalidate loadMode = iota
	// modePreferCache scans only when the snapshot is missing or empty.
	modePreferCache
	// modeScan skips the cache read.
	modeScan
)

// Controller drives one catalog view. All methods are safe for concurrent
// use; events are meant for a single consumer.
type Controller struct {
	deps         Deps
	root         string
	rootBoundary bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	state     State
	busy      bool
	closed    bool
	path      string
	items     []model.FileItem
	results   []model.FileItem
	query     string
	recursive bool
	owner     *model.TagOwner
	selected  string

	events    *eventQueue
	watcher   *Watcher
	closeOnce sync.Once
}

// New creates a Controller positioned at opts.Root. Nothing is loaded until
// Open is called.
func New(deps Deps, opts Options) (*Controller, error) {
	if deps.Scanner == nil || deps.Cache == nil {
		return nil, errors.New("catalog: scanner and cache are required")
	}
	if opts.Root == "" {
		return nil, errors.New("catalog: root is required")
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", opts.Root, err)
	}
	if deps.Allocator == nil {
		deps.Allocator = transfer.NewAllocator(transfer.Options{})
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		deps:         deps,
		root:         root,
		rootBoundary: opts.RootBoundary,
		ctx:          ctx,
		cancel:       cancel,
		path:         root,
		state:        StateIdle,
		events:       newEventQueue(),
	}

	if opts.Watch {
		debounce := opts.WatchDebounce
		if debounce <= 0 {
			debounce = 250 * time.Millisecond
		}
		w, err := NewWatcher(debounce, c.onDirChanged)
		if err != nil {
			cancel()
			c.events.close()
			return nil, fmt.Errorf("failed to start watcher: %w", err)
		}
		c.watcher = w
	}

	return c, nil
}

// Events returns the channel events are delivered on. It is closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.events.out
}

// Allocator returns the allocator gallery handles are issued from.
func (c *Controller) Allocator() *transfer.Allocator {
	return c.deps.Allocator
}

// Root returns the storage root.
func (c *Controller) Root() string {
	return c.root
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Path returns the current directory.
func (c *Controller) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// Query returns the active search query, or "" when no search is active.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Busy reports whether a load or search is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Items returns a copy of what the view shows: search results while a search
// is active, the directory listing otherwise.
func (c *Controller) Items() []model.FileItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.CloneItems(c.viewLocked())
}

// Owner returns the selected tag owner, or nil.
func (c *Controller) Owner() *model.TagOwner {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner == nil {
		return nil
	}
	o := *c.owner
	return &o
}

// Open loads the root: the cached snapshot first, then a fresh scan.
func (c *Controller) Open() error {
	return c.startLoad("load", c.root, modeRevalidate, func() { c.selected = "" })
}

// Navigate moves into dir and loads it the same way Open does.
func (c *Controller) Navigate(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if c.rootBoundary && !filesystem.IsWithin(c.root, abs) {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, abs)
	}
	return c.startLoad("load", abs, modeRevalidate, func() { c.selected = "" })
}

// Refresh rescans the current directory without reading the cache.
func (c *Controller) Refresh() error {
	return c.startLoad("refresh", "", modeScan, nil)
}

// CanUp reports whether Up would do anything.
func (c *Controller) CanUp() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchActiveLocked() || c.canLeaveLocked()
}

// Up clears an active search, returning to the directory listing. Otherwise
// it moves to the parent directory, preferring its cached snapshot and
// scanning only when there is none.
func (c *Controller) Up() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		c.dropped("load")
		return ErrBusy
	}
	if c.searchActiveLocked() {
		c.clearSearchLocked()
		c.mu.Unlock()
		return nil
	}
	if !c.canLeaveLocked() {
		c.mu.Unlock()
		metrics.CatalogRequestsTotal.WithLabelValues("up", "refused").Inc()
		return ErrAtRoot
	}
	from := c.path
	c.mu.Unlock()

	parent := filepath.Dir(from)
	if !filesystem.CanRead(parent, true) {
		return &scanner.ScanError{Op: "up", Path: parent, Err: fs.ErrPermission}
	}
	return c.startLoad("load", parent, modePreferCache, func() { c.selected = from })
}

// Search filters the current listing by name (recursive false) or searches
// the subtree below the current directory (recursive true). Queries are
// trimmed, an empty query clears the search, and repeating the active local
// query does nothing. Local searches complete before Search returns.
func (c *Controller) Search(query string, recursive bool) error {
	q := strings.TrimSpace(query)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		c.dropped("search")
		return ErrBusy
	}
	if q == "" {
		c.clearSearchLocked()
		c.mu.Unlock()
		return nil
	}
	if !recursive {
		if c.state == StateSearchLoaded && c.query == q && !c.recursive {
			c.mu.Unlock()
			return nil
		}
		c.query = q
		c.recursive = false
		c.results = filterByName(c.items, q)
		c.state = StateSearchLoaded
		c.events.push(Event{Type: EventSearchLoaded, Path: c.path, Query: q, Items: model.CloneItems(c.results)})
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	var dir string
	err := c.begin("search", StateSearching, func() {
		dir = c.path
		c.query = q
		c.recursive = true
		c.results = nil
	})
	if err != nil {
		return err
	}

	c.run("search", func(ctx context.Context) {
		c.events.push(Event{Type: EventLoading, Path: dir, Query: q})

		results, err := c.deps.Scanner.Search(ctx, dir, q)
		if ctx.Err() != nil {
			c.finish(StateLoaded, func() *Event {
				c.query = ""
				c.recursive = false
				return nil
			})
			return
		}
		if err != nil {
			logging.Warn("Search for %q under %s failed: %v", q, dir, err)
			c.events.push(Event{Type: EventError, Path: dir, Query: q, Err: err})
		}
		results = c.annotate(results)

		c.finish(StateSearchLoaded, func() *Event {
			c.results = results
			markSelected(c.results, c.selected)
			return &Event{Type: EventSearchLoaded, Path: dir, Query: q, Items: model.CloneItems(c.results)}
		})
	})
	return nil
}

// ClearSearch drops the active search and republishes the listing.
func (c *Controller) ClearSearch() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.busy {
		c.dropped("search")
		return ErrBusy
	}
	c.clearSearchLocked()
	return nil
}

// SelectOwner sets the tag owner ToggleTag records under. Nil clears it.
func (c *Controller) SelectOwner(owner *model.TagOwner) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if owner == nil {
		c.owner = nil
		return
	}
	o := *owner
	c.owner = &o
}

// ToggleTag untags item if it is tagged and tags it under the selected owner
// otherwise. It returns the new state.
func (c *Controller) ToggleTag(item model.FileItem) (bool, error) {
	owner := c.Owner()
	if owner == nil || c.deps.Tags == nil {
		return false, ErrNoOwner
	}

	tagged, err := c.deps.Tags.Toggle(c.ctx, owner.ID, item)
	if err != nil {
		c.events.push(Event{Type: EventError, Path: item.Path, Err: err})
		return false, err
	}

	c.mu.Lock()
	setHasTag(c.items, item.Path, tagged)
	setHasTag(c.results, item.Path, tagged)
	c.events.push(Event{Type: EventTagChanged, Path: item.Path, Tagged: tagged})
	c.mu.Unlock()
	return tagged, nil
}

// Select marks the item at path as selected and clears every other
// selection. It reports whether the item is in the current view.
func (c *Controller) Select(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = path
	inItems := markSelected(c.items, path)
	inResults := markSelected(c.results, path)
	if c.searchActiveLocked() {
		return inResults
	}
	return inItems
}

// Activate performs the default action for item: folders are entered, items
// are tagged or untagged while an owner is selected, and media is opened in a
// viewer. The viewer is nil unless one was opened.
func (c *Controller) Activate(item model.FileItem) (*Viewer, error) {
	if item.IsFolder() {
		return nil, c.Navigate(item.Path)
	}
	if c.Owner() != nil {
		_, err := c.ToggleTag(item)
		return nil, err
	}
	v, err := c.OpenViewer(item)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FixDirTimes sets every directory below the current one to the time of its
// newest file, then rescans.
func (c *Controller) FixDirTimes() error {
	var dir string
	err := c.begin("fix_times", StateLoading, func() {
		dir = c.path
		c.query = ""
		c.recursive = false
		c.results = nil
	})
	if err != nil {
		return err
	}

	c.run("fix_times", func(ctx context.Context) {
		c.events.push(Event{Type: EventLoading, Path: dir})

		n, err := filesystem.FixDirTimes(ctx, dir)
		if ctx.Err() != nil {
			c.finish(StateIdle, nil)
			return
		}
		if err != nil {
			logging.Warn("Fixing directory times under %s failed: %v", dir, err)
			c.events.push(Event{Type: EventError, Path: dir, Err: err})
		} else {
			logging.Info("Updated %d directory times under %s", n, dir)
			c.events.push(Event{Type: EventTimesFixed, Path: dir, Count: n})
		}
		c.load(ctx, dir, modeScan)
	})
	return nil
}

// Close cancels any in-flight operation, waits for it, and closes Events.
func (c *Controller) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		if c.watcher != nil {
			err = c.watcher.Close()
		}
		c.cancel()
		c.wg.Wait()
		c.events.close()
	})
	return err
}

// startLoad loads dir, or the current directory when dir is empty. The
// current directory is read only once the gate is held.
func (c *Controller) startLoad(op, dir string, mode loadMode, mutate func()) error {
	err := c.begin(op, StateLoading, func() {
		if dir == "" {
			dir = c.path
		}
		c.path = dir
		c.query = ""
		c.recursive = false
		c.results = nil
		if mutate != nil {
			mutate()
		}
	})
	if err != nil {
		return err
	}

	c.run(op, func(ctx context.Context) {
		c.events.push(Event{Type: EventLoading, Path: dir})
		c.load(ctx, dir, mode)
	})
	return nil
}

// load runs on the worker and always ends the operation through finish.
func (c *Controller) load(ctx context.Context, dir string, mode loadMode) {
	if mode != modeScan {
		cached, ok, err := c.deps.Cache.Get(ctx, dir)
		if err != nil {
			logging.Warn("Cache read for %s failed: %v", dir, err)
		}
		if ok {
			cached = c.annotate(cached)
			if mode == modePreferCache && len(cached) > 0 {
				c.finish(StateLoaded, func() *Event {
					c.items = cached
					markSelected(c.items, c.selected)
					return &Event{Type: EventLoaded, Path: dir, Items: model.CloneItems(c.items)}
				})
				c.follow(dir)
				return
			}

			c.mu.Lock()
			c.items = cached
			markSelected(c.items, c.selected)
			c.events.push(Event{Type: EventLoaded, Path: dir, Items: model.CloneItems(c.items), Stale: true})
			c.mu.Unlock()
		}
	}

	items, err := c.deps.Scanner.List(ctx, dir)
	if ctx.Err() != nil {
		c.finish(StateIdle, nil)
		return
	}

	var scanErr *scanner.ScanError
	switch {
	case err == nil:
		if perr := c.deps.Cache.Put(ctx, dir, items); perr != nil {
			logging.Warn("Cache write for %s failed: %v", dir, perr)
		}
	case errors.As(err, &scanErr):
		logging.Debug("Listing %s failed: %v", dir, err)
		c.events.push(Event{Type: EventError, Path: dir, Err: err})
	default:
		logging.Warn("Listing %s failed: %v", dir, err)
		c.events.push(Event{Type: EventError, Path: dir, Err: err})
	}
	if items == nil {
		items = []model.FileItem{}
	}
	items = c.annotate(items)

	c.finish(StateLoaded, func() *Event {
		c.items = items
		markSelected(c.items, c.selected)
		return &Event{Type: EventLoaded, Path: dir, Items: model.CloneItems(c.items)}
	})
	c.follow(dir)
}

// begin is the single-flight gate. mutate runs under the lock once the
// request is accepted.
func (c *Controller) begin(op string, next State, mutate func()) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		c.dropped(op)
		return ErrBusy
	}
	c.busy = true
	c.state = next
	if mutate != nil {
		mutate()
	}
	c.wg.Add(1)
	c.mu.Unlock()

	metrics.CatalogRequestsTotal.WithLabelValues(op, "started").Inc()
	return nil
}

func (c *Controller) run(op string, fn func(ctx context.Context)) {
	go func() {
		defer c.wg.Done()
		start := time.Now()
		fn(c.ctx)
		metrics.CatalogOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()
}

// finish releases the gate. The event apply returns is published under the
// same lock so it is ordered before anything the next operation publishes.
func (c *Controller) finish(state State, apply func() *Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ev *Event
	if apply != nil {
		ev = apply()
	}
	c.state = state
	c.busy = false
	if ev != nil {
		c.events.push(*ev)
	}
}

func (c *Controller) dropped(op string) {
	metrics.CatalogRequestsTotal.WithLabelValues(op, "dropped").Inc()
	logging.Debug("Dropping %s request: another operation is in flight", op)
}

func (c *Controller) follow(dir string) {
	if c.watcher == nil {
		return
	}
	if err := c.watcher.Follow(dir); err != nil {
		logging.Warn("Cannot watch %s: %v", dir, err)
	}
}

// onDirChanged is the watcher callback.
func (c *Controller) onDirChanged(dir string) {
	if dir != c.Path() {
		return
	}
	if err := c.deps.Cache.Clear(c.ctx, dir); err != nil {
		logging.Warn("Failed to invalidate cache for %s: %v", dir, err)
	}
	if err := c.Refresh(); err != nil && !errors.Is(err, ErrClosed) {
		logging.Debug("Change refresh for %s not started: %v", dir, err)
	}
}

func (c *Controller) annotate(items []model.FileItem) []model.FileItem {
	if c.deps.Tags == nil {
		return items
	}
	for i := range items {
		items[i].HasTag = c.deps.Tags.IsTagged(items[i].Path)
	}
	return items
}

func (c *Controller) viewLocked() []model.FileItem {
	if c.searchActiveLocked() {
		return c.results
	}
	return c.items
}

func (c *Controller) searchActiveLocked() bool {
	return c.state == StateSearchLoaded || c.state == StateSearching
}

func (c *Controller) canLeaveLocked() bool {
	if c.rootBoundary && c.path == c.root {
		return false
	}
	return filepath.Dir(c.path) != c.path
}

func (c *Controller) clearSearchLocked() {
	if !c.searchActiveLocked() && c.query == "" {
		return
	}
	c.query = ""
	c.recursive = false
	c.results = nil
	c.state = StateLoaded
	c.events.push(Event{Type: EventLoaded, Path: c.path, Items: model.CloneItems(c.items)})
}

func filterByName(items []model.FileItem, query string) []model.FileItem {
	q := strings.ToLower(query)
	out := make([]model.FileItem, 0)
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}

func markSelected(items []model.FileItem, path string) bool {
	found := false
	for i := range items {
		items[i].IsSelected = path != "" && items[i].Path == path
		found = found || items[i].IsSelected
	}
	return found
}

func setHasTag(items []model.FileItem, path string, tagged bool) {
	if i := indexOf(items, path); i >= 0 {
		items[i].HasTag = tagged
	}
}

func indexOf(items []model.FileItem, path string) int {
	for i := range items {
		if items[i].Path == path {
			return i
		}
	}
	return -1
}
