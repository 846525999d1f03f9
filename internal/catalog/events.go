package catalog

import (
	"sync"

	"media-catalog/internal/model"
)

// EventType identifies what an Event reports.
type EventType int

const (
	// EventLoading is sent when a load or recursive search starts.
	EventLoading EventType = iota
	// EventLoaded carries a directory listing. Stale is set when it came from
	// the cache and a scan is still running.
	EventLoaded
	// EventSearchLoaded carries search results.
	EventSearchLoaded
	// EventError reports a failure. A load that fails still ends with an
	// EventLoaded carrying an empty listing.
	EventError
	// EventTagChanged reports that Path was tagged or untagged.
	EventTagChanged
	// EventTimesFixed reports how many directory times FixDirTimes updated.
	EventTimesFixed
)

func (t EventType) String() string {
	switch t {
	case EventLoading:
		return "loading"
	case EventLoaded:
		return "loaded"
	case EventSearchLoaded:
		return "search_loaded"
	case EventError:
		return "error"
	case EventTagChanged:
		return "tag_changed"
	case EventTimesFixed:
		return "times_fixed"
	default:
		return "unknown"
	}
}

// Event is one notification from the controller.
type Event struct {
	Type   EventType
	Path   string
	Query  string
	Items  []model.FileItem
	Stale  bool
	Tagged bool
	Count  int
	Err    error
}

// eventQueue decouples publishing from delivery: push never blocks, and a
// single goroutine forwards events to out in push order.
type eventQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []Event
	closed  bool

	out  chan Event
	stop chan struct{}
	done chan struct{}
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		out:  make(chan Event),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

func (q *eventQueue) push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.pending = append(q.pending, ev)
	q.cond.Signal()
}

func (q *eventQueue) run() {
	defer close(q.done)
	defer close(q.out)

	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			q.mu.Unlock()
			return
		}
		ev := q.pending[0]
		q.pending[0] = Event{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		select {
		case q.out <- ev:
		case <-q.stop:
			return
		}
	}
}

// close drops undelivered events and closes out. It must be called once.
func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.pending = nil
	q.cond.Broadcast()
	q.mu.Unlock()

	close(q.stop)
	<-q.done
}
