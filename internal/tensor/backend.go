package tensor

import "github.com/simonwuelker/deep-thought/internal/autograd"

// Backend executes array operations. The CPU implementation lives in
// internal/backend/cpu; the interface exists so layers and losses can be
// written against the operation set rather than one implementation.
//
// Every operation either returns a fully valid new array or fails without
// mutating any existing one.
type Backend interface {
	// Element-wise arithmetic with NumPy-style broadcasting.
	Add(a, b *Array) (*Array, error)
	Sub(a, b *Array) (*Array, error)
	Mul(a, b *Array) (*Array, error)
	// Div fails with autograd.ErrDivisionByZero when any divisor primal
	// is exactly zero.
	Div(a, b *Array) (*Array, error)

	// Apply maps a unary dual function over every element.
	Apply(a *Array, f func(autograd.Dual) autograd.Dual) (*Array, error)

	// MatMul computes a·b (+ bias when non-nil). a is (m,k), b is (k,n),
	// optionally with a leading batch dimension on either side; bias must
	// broadcast to the output shape.
	MatMul(a, b, bias *Array) (*Array, error)
}
