package transfer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

const (
	// initialCapacity is one page; regions double from here.
	initialCapacity = 4096
	headerSize      = 4
)

// Handle is the opaque id of a live transfer buffer. It is only meaningful to
// the Allocator that issued it.
type Handle int64

// Flags select how a buffer is laid out.
type Flags uint8

const (
	// FlagNone creates a plain field buffer.
	FlagNone Flags = 0
	// FlagList reserves a leading record-count header patched by WriteCount.
	FlagList Flags = 1 << 0
)

// Options configures an Allocator.
type Options struct {
	// MaxBytes caps the bytes reserved by all live buffers. Zero means no cap.
	MaxBytes int64
}

// Allocator is the table of live transfer buffers. It is safe for
// concurrent use.
type Allocator struct {
	maxBytes  int64
	liveBytes atomic.Int64

	mu      sync.Mutex
	lastID  Handle
	buffers map[Handle]*buffer
}

// buffer is one off-heap region. All access to data happens under mu so a
// concurrent Destroy can never unmap memory that is being read or written.
type buffer struct {
	mu       sync.Mutex
	data     []byte
	size     int
	flags    Flags
	released bool
}

// NewAllocator creates an empty handle table.
func NewAllocator(opts Options) *Allocator {
	return &Allocator{
		maxBytes: opts.MaxBytes,
		buffers:  make(map[Handle]*buffer),
	}
}

// Create allocates an empty buffer and returns a writer for it.
func (a *Allocator) Create(flags Flags) (*Writer, error) {
	if err := a.reserve(initialCapacity); err != nil {
		metrics.TransferAllocationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	data, err := mapRegion(initialCapacity)
	if err != nil {
		a.release(initialCapacity)
		metrics.TransferAllocationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrAllocation, err)
	}
	metrics.TransferAllocationsTotal.WithLabelValues("success").Inc()

	b := &buffer{data: data, flags: flags}

	a.mu.Lock()
	a.lastID++
	h := a.lastID
	a.buffers[h] = b
	a.mu.Unlock()

	metrics.TransferLiveHandles.Inc()

	w := &Writer{alloc: a, h: h, buf: b}
	if flags&FlagList != 0 {
		w.WriteInt(-1)
	}
	if w.err != nil {
		return nil, w.err
	}
	return w, nil
}

// Open attaches a reader to the buffer behind h. The reader does not own the
// handle; the caller still decides who destroys it.
func (a *Allocator) Open(h Handle) (*Reader, error) {
	b, err := a.resolve(h)
	if err != nil {
		return nil, err
	}
	r := &Reader{buf: b}
	if b.flags&FlagList != 0 {
		r.pos = headerSize
	}
	return r, nil
}

// Destroy releases the buffer behind h. Destroying a handle twice returns
// ErrReleased.
func (a *Allocator) Destroy(h Handle) error {
	a.mu.Lock()
	b, ok := a.buffers[h]
	if ok {
		delete(a.buffers, h)
	}
	a.mu.Unlock()

	if !ok {
		return a.lookupError(h)
	}

	b.mu.Lock()
	capacity := len(b.data)
	err := unmapRegion(b.data)
	b.data = nil
	b.size = 0
	b.released = true
	b.mu.Unlock()

	a.release(int64(capacity))
	metrics.TransferLiveHandles.Dec()
	if err != nil {
		return fmt.Errorf("failed to unmap transfer buffer %d: %w", h, err)
	}
	return nil
}

// Live returns the number of buffers created and not yet destroyed.
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buffers)
}

// LiveBytes returns the bytes reserved by live buffers.
func (a *Allocator) LiveBytes() int64 {
	return a.liveBytes.Load()
}

// Close destroys every live buffer. Leaked handles are logged.
func (a *Allocator) Close() error {
	a.mu.Lock()
	handles := make([]Handle, 0, len(a.buffers))
	for h := range a.buffers {
		handles = append(handles, h)
	}
	a.mu.Unlock()

	if len(handles) > 0 {
		logging.Warn("Releasing %d transfer buffers that were never destroyed", len(handles))
	}

	var errs []error
	for _, h := range handles {
		if err := a.Destroy(h); err != nil && !errors.Is(err, ErrReleased) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Allocator) resolve(h Handle) (*buffer, error) {
	a.mu.Lock()
	b, ok := a.buffers[h]
	a.mu.Unlock()
	if !ok {
		return nil, a.lookupError(h)
	}
	return b, nil
}

// lookupError distinguishes destroyed handles from ones never issued. Ids are
// issued sequentially, so any id up to lastID that is not live was destroyed.
func (a *Allocator) lookupError(h Handle) error {
	a.mu.Lock()
	last := a.lastID
	a.mu.Unlock()

	if h > 0 && h <= last {
		metrics.TransferHandleErrors.WithLabelValues("released").Inc()
		return fmt.Errorf("%w: %d", ErrReleased, h)
	}
	metrics.TransferHandleErrors.WithLabelValues("unknown").Inc()
	return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
}

func (a *Allocator) reserve(n int64) error {
	for {
		cur := a.liveBytes.Load()
		if a.maxBytes > 0 && cur+n > a.maxBytes {
			return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrAllocation, n, cur, a.maxBytes)
		}
		if a.liveBytes.CompareAndSwap(cur, cur+n) {
			metrics.TransferLiveBytes.Set(float64(cur + n))
			return nil
		}
	}
}

func (a *Allocator) release(n int64) {
	metrics.TransferLiveBytes.Set(float64(a.liveBytes.Add(-n)))
}

// append grows b as needed and lets fill write n bytes at the end.
func (a *Allocator) append(b *buffer, n int, fill func(p []byte)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return ErrReleased
	}
	if err := a.grow(b, b.size+n); err != nil {
		return err
	}
	fill(b.data[b.size : b.size+n])
	b.size += n
	return nil
}

// patchInt overwrites the already written int32 at off.
func (a *Allocator) patchInt(b *buffer, off int, v int32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return ErrReleased
	}
	if off+4 > b.size {
		return ErrShortBuffer
	}
	binary.LittleEndian.PutUint32(b.data[off:off+4], uint32(v))
	return nil
}

// grow doubles b's region until it holds need bytes. b.mu must be held.
func (a *Allocator) grow(b *buffer, need int) error {
	if need <= len(b.data) {
		return nil
	}

	newCap := len(b.data) * 2
	if newCap == 0 {
		newCap = initialCapacity
	}
	for newCap < need {
		newCap *= 2
	}

	delta := int64(newCap - len(b.data))
	if err := a.reserve(delta); err != nil {
		metrics.TransferAllocationsTotal.WithLabelValues("error").Inc()
		return err
	}
	region, err := mapRegion(newCap)
	if err != nil {
		a.release(delta)
		metrics.TransferAllocationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: %v", ErrAllocation, err)
	}
	metrics.TransferAllocationsTotal.WithLabelValues("success").Inc()

	copy(region, b.data[:b.size])
	if err := unmapRegion(b.data); err != nil {
		logging.Warn("Failed to unmap outgrown transfer region: %v", err)
	}
	b.data = region
	return nil
}
