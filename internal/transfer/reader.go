package transfer

import (
	"encoding/binary"
	"fmt"

	"media-catalog/internal/metrics"
)

// Reader decodes fields from a transfer buffer in the order they were
// written. Errors are sticky: after the first failure reads return zero
// values and Err reports the cause. A Reader is not safe for concurrent use.
type Reader struct {
	buf *buffer
	pos int
	err error
}

// Err returns the first error encountered while reading.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the unread byte count, or 0 once the buffer is released.
func (r *Reader) Remaining() int {
	r.buf.mu.Lock()
	defer r.buf.mu.Unlock()
	if r.buf.released || r.pos > r.buf.size {
		return 0
	}
	return r.buf.size - r.pos
}

// ReadInt reads a 4-byte integer.
func (r *Reader) ReadInt() int32 {
	var v int32
	r.take(4, func(p []byte) { v = int32(binary.LittleEndian.Uint32(p)) })
	return v
}

// ReadLong reads an 8-byte integer.
func (r *Reader) ReadLong() int64 {
	var v int64
	r.take(8, func(p []byte) { v = int64(binary.LittleEndian.Uint64(p)) })
	return v
}

// ReadBool reads a boolean written by WriteBool.
func (r *Reader) ReadBool() bool {
	return r.ReadInt() != 0
}

// ReadString reads a string. An absent string reads as "".
func (r *Reader) ReadString() string {
	if s := r.ReadOptString(); s != nil {
		return *s
	}
	return ""
}

// ReadOptString reads a string, returning nil for the absent marker.
func (r *Reader) ReadOptString() *string {
	n := r.ReadInt()
	if r.err != nil || n < 0 {
		return nil
	}
	var s string
	r.take(int(n), func(p []byte) { s = string(p) })
	if r.err != nil {
		return nil
	}
	return &s
}

// ReadCount returns the list header: the record count, or -1 when no list
// was written. The read position is not affected.
func (r *Reader) ReadCount() int {
	if r.err != nil {
		return -1
	}
	if r.buf.flags&FlagList == 0 {
		r.err = ErrNoCountHeader
		return -1
	}

	var v int32
	saved := r.pos
	r.pos = 0
	r.take(4, func(p []byte) { v = int32(binary.LittleEndian.Uint32(p)) })
	r.pos = saved
	if r.err != nil {
		return -1
	}
	return int(v)
}

// take copies n bytes out of the region through fill. The returned values
// never alias buffer memory.
func (r *Reader) take(n int, fill func(p []byte)) {
	if r.err != nil {
		return
	}

	b := r.buf
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		metrics.TransferHandleErrors.WithLabelValues("released").Inc()
		r.err = ErrReleased
		return
	}
	if n < 0 || r.pos+n > b.size {
		metrics.TransferHandleErrors.WithLabelValues("short_buffer").Inc()
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.pos, b.size)
		return
	}
	fill(b.data[r.pos : r.pos+n])
	r.pos += n
}
