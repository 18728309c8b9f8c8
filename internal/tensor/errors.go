package tensor

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is the sentinel for every incompatible-shape failure:
// broadcasting, reshaping and matrix multiplication. Match it with errors.Is.
var ErrShapeMismatch = errors.New("shape mismatch")

// ShapeError carries the operation and the offending shapes.
type ShapeError struct {
	Op string
	A  Shape
	B  Shape
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.B == nil {
		return fmt.Sprintf("%s: incompatible shape %v", e.Op, e.A)
	}
	return fmt.Sprintf("%s: incompatible shapes %v and %v", e.Op, e.A, e.B)
}

// Unwrap makes errors.Is(err, ErrShapeMismatch) succeed.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}
