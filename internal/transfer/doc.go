// Package transfer moves large record lists between components through
// buffers that live outside the Go heap. Only an integer Handle crosses the
// component boundary; the receiver resolves it against the same Allocator.
//
// Wire format: fields are appended without type tags, so a reader must decode
// with the schema the writer used. Integers are 4-byte and longs 8-byte
// little-endian, booleans are a 4-byte 0 or 1, and strings are a 4-byte
// signed length followed by UTF-8 bytes (length -1 marks an absent string).
//
// Lists use one count discipline. A buffer created with FlagList starts with
// a reserved 4-byte count header holding -1 ("no list"). After the records are
// written, WriteCount patches the header with the record count, and the reader
// reads it before decoding the records.
//
// A handle has exactly one owner, which must destroy it once. Reads after
// Destroy fail with ErrReleased instead of touching freed memory.
package transfer
