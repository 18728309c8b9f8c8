// Package cpu implements array arithmetic and the GEMM kernel over dual
// numbers on the CPU.
package cpu

import (
	"fmt"

	"github.com/simonwuelker/deep-thought/internal/autograd"
	"github.com/simonwuelker/deep-thought/internal/parallel"
	"github.com/simonwuelker/deep-thought/internal/tensor"
)

// Backend executes dual-number array operations. The zero value is not
// usable; construct it with New.
type Backend struct {
	pool parallel.Config
}

// New creates a CPU backend with default row parallelism.
func New() *Backend {
	return &Backend{pool: parallel.DefaultConfig()}
}

// NewSequential creates a backend that never spawns goroutines. Results are
// identical to the parallel backend; this exists for benchmarks and for
// debugging with deterministic scheduling.
func NewSequential() *Backend {
	return &Backend{pool: parallel.Sequential()}
}

// binary applies f element-wise after broadcasting both operands to a
// common shape. The output buffer is freshly allocated; on failure no
// existing array is mutated.
func (c *Backend) binary(op string, a, b *tensor.Array, f func(x, y autograd.Dual) (autograd.Dual, error)) (*tensor.Array, error) {
	outShape, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sa, err := a.BroadcastStrides(outShape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sb, err := b.BroadcastStrides(outShape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := tensor.New(outShape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	da, db, dst := a.Data(), b.Data(), out.Data()
	n := outShape.NumElements()
	idx := make([]int, len(outShape))
	offA, offB := 0, 0

	for flat := 0; flat < n; flat++ {
		r, err := f(da[offA], db[offB])
		if err != nil {
			out.Release()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		dst[flat] = r

		// Advance the multi-index odometer and both strided offsets.
		for axis := len(outShape) - 1; axis >= 0; axis-- {
			idx[axis]++
			offA += sa[axis]
			offB += sb[axis]
			if idx[axis] < outShape[axis] {
				break
			}
			offA -= idx[axis] * sa[axis]
			offB -= idx[axis] * sb[axis]
			idx[axis] = 0
		}
	}
	return out, nil
}

// Add performs element-wise addition with broadcasting.
func (c *Backend) Add(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("add", a, b, func(x, y autograd.Dual) (autograd.Dual, error) {
		return autograd.Add(x, y), nil
	})
}

// Sub performs element-wise subtraction with broadcasting.
func (c *Backend) Sub(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("sub", a, b, func(x, y autograd.Dual) (autograd.Dual, error) {
		return autograd.Sub(x, y), nil
	})
}

// Mul performs element-wise multiplication with broadcasting.
func (c *Backend) Mul(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("mul", a, b, func(x, y autograd.Dual) (autograd.Dual, error) {
		return autograd.Mul(x, y), nil
	})
}

// Div performs element-wise division with broadcasting. It fails with
// autograd.ErrDivisionByZero as soon as any divisor primal is exactly zero.
func (c *Backend) Div(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("div", a, b, autograd.Div)
}

// Apply maps a unary function over every element, producing a new array
// whose elements carry the chain-rule derivatives computed by f.
func (c *Backend) Apply(a *tensor.Array, f func(autograd.Dual) autograd.Dual) (*tensor.Array, error) {
	out, err := tensor.New(a.Shape())
	if err != nil {
		return nil, err
	}
	dst := out.Data()

	src := a.Data()
	strides := a.Strides()
	shape := a.Shape()
	n := shape.NumElements()
	idx := make([]int, len(shape))
	off := 0

	for flat := 0; flat < n; flat++ {
		dst[flat] = f(src[off])

		for axis := len(shape) - 1; axis >= 0; axis-- {
			idx[axis]++
			off += strides[axis]
			if idx[axis] < shape[axis] {
				break
			}
			off -= idx[axis] * strides[axis]
			idx[axis] = 0
		}
	}
	return out, nil
}
