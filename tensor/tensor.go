// Package tensor provides the public API for strided dual-number arrays.
//
// Arrays are reference-counted views over shared buffers; Borrow,
// BroadcastTo, Reshape and Transpose alias the owner's storage instead of
// copying it.
//
// Example:
//
//	a, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
//	v, _ := a.Transpose()
//	defer v.Release()
package tensor

import (
	"github.com/simonwuelker/deep-thought/internal/autograd"
	"github.com/simonwuelker/deep-thought/internal/tensor"
)

// Shape describes array dimensions, e.g. Shape{2, 3} is a 2×3 matrix.
type Shape = tensor.Shape

// Array is a strided view over a reference-counted dual-number buffer.
type Array = tensor.Array

// Backend executes array operations; see backend/cpu for the CPU
// implementation.
type Backend = tensor.Backend

// ShapeError describes the operands of a shape failure. It unwraps to
// ErrShapeMismatch.
type ShapeError = tensor.ShapeError

// ErrShapeMismatch is the sentinel wrapped by every shape failure.
var ErrShapeMismatch = tensor.ErrShapeMismatch

// New creates a zero-filled constant array.
func New(shape Shape) (*Array, error) { return tensor.New(shape) }

// Zeros creates a constant array of zeros.
func Zeros(shape Shape) (*Array, error) { return tensor.Zeros(shape) }

// Full creates a constant array filled with fill.
func Full(shape Shape, fill float64) (*Array, error) { return tensor.Full(shape, fill) }

// FromSlice creates a constant array from row-major values.
func FromSlice(vals []float64, shape Shape) (*Array, error) {
	return tensor.FromSlice(vals, shape)
}

// NewParameterArray creates an array of freshly seeded parameters with a
// contiguous row-major index range starting at the returned index.
func NewParameterArray(vals []float64, shape Shape, reg *autograd.Registry) (*Array, autograd.ParameterIndex, error) {
	return tensor.NewParameterArray(vals, shape, reg)
}

// Glorot creates a Glorot/Xavier-initialized parameter array.
func Glorot(shape Shape, fanIn, fanOut int, reg *autograd.Registry) (*Array, autograd.ParameterIndex, error) {
	return tensor.Glorot(shape, fanIn, fanOut, reg)
}

// BroadcastShapes computes the NumPy-style common shape of a and b.
func BroadcastShapes(a, b Shape) (Shape, error) { return tensor.BroadcastShapes(a, b) }
