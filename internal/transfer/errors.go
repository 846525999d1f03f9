package transfer

import "errors"

var (
	// ErrAllocation is returned when a buffer cannot be created or grown,
	// either because the byte budget is exhausted or the mapping failed.
	ErrAllocation = errors.New("transfer buffer allocation failed")
	// ErrUnknownHandle is returned for a handle this allocator never issued.
	ErrUnknownHandle = errors.New("unknown transfer handle")
	// ErrReleased is returned for a handle that has already been destroyed.
	ErrReleased = errors.New("transfer handle already released")
	// ErrShortBuffer is returned when a read runs past the written region.
	ErrShortBuffer = errors.New("read past end of transfer buffer")
	// ErrNoCountHeader is returned when a list operation is used on a buffer
	// created without FlagList.
	ErrNoCountHeader = errors.New("transfer buffer has no count header")
)
