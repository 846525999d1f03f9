package transfer

import (
	"encoding/binary"
	"fmt"
)

// Writer appends fields to a transfer buffer. Errors are sticky: after the
// first failure every write is a no-op, the handle has already been
// destroyed, and Err reports the cause. A Writer is not safe for concurrent
// use.
type Writer struct {
	alloc *Allocator
	h     Handle
	buf   *buffer
	n     int
	err   error
}

// Handle returns the id to hand to the receiving side.
func (w *Writer) Handle() Handle {
	return w.h
}

// Err returns the first error encountered while writing.
func (w *Writer) Err() error {
	return w.err
}

// Len returns the number of bytes written, including any count header.
func (w *Writer) Len() int {
	return w.n
}

// WriteInt appends a 4-byte integer.
func (w *Writer) WriteInt(v int32) {
	w.put(4, func(p []byte) { binary.LittleEndian.PutUint32(p, uint32(v)) })
}

// WriteLong appends an 8-byte integer.
func (w *Writer) WriteLong(v int64) {
	w.put(8, func(p []byte) { binary.LittleEndian.PutUint64(p, uint64(v)) })
}

// WriteBool appends a boolean as a 4-byte 0 or 1.
func (w *Writer) WriteBool(v bool) {
	var i int32
	if v {
		i = 1
	}
	w.WriteInt(i)
}

// WriteString appends a present string.
func (w *Writer) WriteString(s string) {
	w.put(4+len(s), func(p []byte) {
		binary.LittleEndian.PutUint32(p, uint32(int32(len(s))))
		copy(p[4:], s)
	})
}

// WriteOptString appends s, or the absent marker when s is nil.
func (w *Writer) WriteOptString(s *string) {
	if s == nil {
		w.WriteInt(-1)
		return
	}
	w.WriteString(*s)
}

// WriteCount patches the list header with n. The buffer must have been
// created with FlagList.
func (w *Writer) WriteCount(n int) {
	if w.err != nil {
		return
	}
	if w.buf.flags&FlagList == 0 {
		w.fail(ErrNoCountHeader)
		return
	}
	if err := w.alloc.patchInt(w.buf, 0, int32(n)); err != nil {
		w.fail(err)
	}
}

func (w *Writer) put(n int, fill func(p []byte)) {
	if w.err != nil {
		return
	}
	if err := w.alloc.append(w.buf, n, fill); err != nil {
		w.fail(err)
		return
	}
	w.n += n
}

// fail records err and destroys the handle so a half-written buffer is never
// left reachable.
func (w *Writer) fail(err error) {
	w.err = fmt.Errorf("transfer %d: %w", w.h, err)
	if derr := w.alloc.Destroy(w.h); derr != nil {
		w.err = fmt.Errorf("%w (destroy: %v)", w.err, derr)
	}
}
