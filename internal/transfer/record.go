package transfer

import (
	"errors"

	"media-catalog/internal/metrics"
)

// Encoder writes one record's fields in schema order.
type Encoder[T any] func(w *Writer, v T)

// Decoder reads one record's fields in the order its Encoder wrote them.
type Decoder[T any] func(r *Reader) T

// WriteRecord writes v with enc.
func WriteRecord[T any](w *Writer, v T, enc Encoder[T]) error {
	enc(w, v)
	return w.Err()
}

// WriteRecordList writes every item and then patches the count header.
func WriteRecordList[T any](w *Writer, items []T, enc Encoder[T]) error {
	for _, v := range items {
		if err := WriteRecord(w, v, enc); err != nil {
			return err
		}
	}
	w.WriteCount(len(items))
	return w.Err()
}

// ReadRecord decodes one record with dec.
func ReadRecord[T any](r *Reader, dec Decoder[T]) (T, error) {
	v := dec(r)
	if err := r.Err(); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// ReadRecordList reads the count header and decodes that many records. A
// buffer whose header still holds -1 yields a nil list.
func ReadRecordList[T any](r *Reader, dec Decoder[T]) ([]T, error) {
	n := r.ReadCount()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}

	capHint := n
	if rem := r.Remaining(); capHint > rem {
		capHint = rem
	}
	out := make([]T, 0, capHint)
	for i := 0; i < n; i++ {
		v, err := ReadRecord(r, dec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// BeginTransfer encodes items into a new list buffer and returns the handle
// to pass to the receiver. On failure no handle remains live.
func BeginTransfer[T any](a *Allocator, items []T, enc Encoder[T]) (Handle, error) {
	w, err := a.Create(FlagList)
	if err != nil {
		return 0, err
	}
	if err := WriteRecordList(w, items, enc); err != nil {
		return 0, err
	}
	metrics.TransferPayloadBytes.Observe(float64(w.Len()))
	return w.Handle(), nil
}

// EndTransfer decodes the list behind h and destroys it. The receiver owns
// the handle from this point whether or not decoding succeeds.
func EndTransfer[T any](a *Allocator, h Handle, dec Decoder[T]) ([]T, error) {
	r, err := a.Open(h)
	if err != nil {
		return nil, err
	}
	items, err := ReadRecordList(r, dec)
	if derr := a.Destroy(h); derr != nil {
		err = errors.Join(err, derr)
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ReleaseTransfer destroys h without decoding it, for a cancelled hand-off.
func ReleaseTransfer(a *Allocator, h Handle) error {
	return a.Destroy(h)
}
