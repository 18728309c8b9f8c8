package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/simonwuelker/deep-thought/internal/autograd"
)

// Primals returns a constant array holding this array's primal values,
// bit-for-bit, with all derivatives stripped. Used for logging, printing
// and re-wrapping gradient-bearing results as plain data.
func (a *Array) Primals() *Array {
	out := &Array{
		buf:    newBuffer(a.NumElements()),
		shape:  a.shape.Clone(),
		stride: a.shape.ComputeStrides(),
	}
	a.iterate(func(flat int, d autograd.Dual) {
		out.buf.data[flat] = autograd.Constant(d.Value)
	})
	return out
}

// Gradient extracts one derivative component per element: the result holds
// ∂element/∂paramₖ as a constant array. Elements whose stored derivative
// vector is shorter than k+1 contribute zero (zero-extension).
func (a *Array) Gradient(k autograd.ParameterIndex) *Array {
	out := &Array{
		buf:    newBuffer(a.NumElements()),
		shape:  a.shape.Clone(),
		stride: a.shape.ComputeStrides(),
	}
	a.iterate(func(flat int, d autograd.Dual) {
		out.buf.data[flat] = autograd.Constant(d.Derivative(k))
	})
	return out
}

// Float64s returns a copy of the primal values in row-major order.
func (a *Array) Float64s() []float64 {
	vals := make([]float64, a.NumElements())
	a.iterate(func(flat int, d autograd.Dual) {
		vals[flat] = d.Value
	})
	return vals
}

// PrimalMatrix exports a 2D array's primal values as a gonum dense matrix.
func (a *Array) PrimalMatrix() (*mat.Dense, error) {
	if len(a.shape) != 2 {
		return nil, &ShapeError{Op: "matrix export", A: a.shape.Clone()}
	}
	return mat.NewDense(a.shape[0], a.shape[1], a.Float64s()), nil
}
