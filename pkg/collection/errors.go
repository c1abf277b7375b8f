package collection

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfBounds is returned by positional operations given an index
// outside the valid range for the current size.
var ErrIndexOutOfBounds = errors.New("collection: index out of bounds")

// IndexError carries the context of a rejected positional operation.
type IndexError struct {
	Op    string
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("collection: %s: index %d out of bounds for size %d", e.Op, e.Index, e.Size)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfBounds
}
