package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/simonwuelker/deep-thought/internal/autograd"
)

// Zeros creates an array filled with constant zeros.
func Zeros(shape Shape) (*Array, error) {
	return New(shape)
}

// Full creates an array filled with the constant fill.
func Full(shape Shape, fill float64) (*Array, error) {
	a, err := New(shape)
	if err != nil {
		return nil, err
	}
	for i := range a.buf.data {
		a.buf.data[i] = autograd.Constant(fill)
	}
	return a, nil
}

// FromSlice creates a constant array from vals in row-major order.
func FromSlice(vals []float64, shape Shape) (*Array, error) {
	if shape.NumElements() != len(vals) {
		return nil, fmt.Errorf("shape %v requires %d elements, got %d: %w",
			shape, shape.NumElements(), len(vals), ErrShapeMismatch)
	}
	a, err := New(shape)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		a.buf.data[i] = autograd.Constant(v)
	}
	return a, nil
}

// NewParameterArray creates an array of freshly seeded parameters: every
// element registers exactly one index with reg and carries a one-hot
// derivative for it. Indices are assigned contiguously in row-major order;
// the first one is returned so callers can address each element's index as
// first + flat position.
//
// vals provides the primal values in row-major order; a nil vals
// initializes all primals to zero (the usual choice for biases).
func NewParameterArray(vals []float64, shape Shape, reg *autograd.Registry) (*Array, autograd.ParameterIndex, error) {
	if vals != nil && shape.NumElements() != len(vals) {
		return nil, 0, fmt.Errorf("shape %v requires %d elements, got %d: %w",
			shape, shape.NumElements(), len(vals), ErrShapeMismatch)
	}
	a, err := New(shape)
	if err != nil {
		return nil, 0, err
	}

	first := autograd.ParameterIndex(-1)
	for i := range a.buf.data {
		idx := reg.Allocate()
		if first < 0 {
			first = idx
		}
		v := 0.0
		if vals != nil {
			v = vals[i]
		}
		a.buf.data[i] = autograd.Seed(v, idx)
	}
	return a, first, nil
}

// Glorot creates a parameter array initialized with Glorot/Xavier normal
// initialization: samples from N(0, sqrt(2 / (fanIn + fanOut))).
func Glorot(shape Shape, fanIn, fanOut int, reg *autograd.Registry) (*Array, autograd.ParameterIndex, error) {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: math.Sqrt(2 / float64(fanIn+fanOut)),
	}
	vals := make([]float64, shape.NumElements())
	for i := range vals {
		vals[i] = dist.Rand()
	}
	return NewParameterArray(vals, shape, reg)
}
