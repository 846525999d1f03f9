package catalog

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// Watcher follows one directory and reports, after a quiet period, that its
// entries changed. Only creations, removals and renames count; writes to
// existing files do not change a listing's membership.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func(dir string)

	mu     sync.Mutex
	dir    string
	closed bool

	stop chan struct{}
	done chan struct{}
}

// NewWatcher starts a watcher that calls onChange with the followed directory.
func NewWatcher(debounce time.Duration, onChange func(dir string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		onChange: onChange,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Follow switches the watch to dir.
func (w *Watcher) Follow(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || dir == w.dir {
		return nil
	}
	if w.dir != "" {
		if err := w.fsw.Remove(w.dir); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
			logging.Debug("Failed to stop watching %s: %v", w.dir, err)
		}
		w.dir = ""
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.dir = dir
	return nil
}

// Dir returns the followed directory.
func (w *Watcher) Dir() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dir
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	var pending string
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			metrics.WatcherEventsTotal.WithLabelValues(opLabel(ev.Op)).Inc()
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			pending = filepath.Dir(ev.Name)
			timer.Reset(w.debounce)
		case <-timer.C:
			if pending != "" {
				w.onChange(pending)
				pending = ""
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn("Directory watcher error: %v", err)
		}
	}
}

func opLabel(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	case op.Has(fsnotify.Write):
		return "write"
	default:
		return "chmod"
	}
}
