package scanner

import (
	"errors"
	"fmt"
)

var (
	// ErrNotDirectory is returned when the scanned path is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrReserved is returned when the scanned path is a reserved directory
	// or lies below one.
	ErrReserved = errors.New("reserved directory")
)

// ScanError reports a directory that could not be listed.
type ScanError struct {
	Op   string
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
