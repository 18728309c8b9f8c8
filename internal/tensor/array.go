// Package tensor implements the strided n-dimensional array backing the
// dual-number engine.
//
// An Array owns a contiguous buffer of dual numbers together with a shape
// and row-major element strides. Views (sub-array borrows, broadcasts,
// reshapes) share the owner's buffer without copying; the buffer is
// reference counted so the allocation tracker can observe its release.
// Plain-scalar arrays (inputs, labels) are simply arrays whose elements
// carry no derivatives.
package tensor

import (
	"fmt"
	"sync/atomic"

	"github.com/simonwuelker/deep-thought/internal/alloctrack"
	"github.com/simonwuelker/deep-thought/internal/autograd"
)

// buffer is a reference-counted element store shared between an owning
// Array and its views.
type buffer struct {
	data     []autograd.Dual
	refCount atomic.Int32
	allocSeq uint64
}

func newBuffer(n int) *buffer {
	b := &buffer{
		data:     make([]autograd.Dual, n),
		allocSeq: alloctrack.Alloc(n),
	}
	b.refCount.Store(1)
	return b
}

func (b *buffer) addRef() {
	b.refCount.Add(1)
}

func (b *buffer) release() {
	if b.refCount.Add(-1) == 0 {
		alloctrack.Free(b.allocSeq, cap(b.data))
		b.data = nil
	}
}

// Array is a strided view over a buffer of dual numbers. Exactly one Array
// owns each buffer; views created by Borrow, BroadcastTo, Reshape and
// Transpose hold an additional reference and stay valid independently of
// the owner.
type Array struct {
	buf    *buffer
	shape  Shape
	stride []int
	offset int
}

// New allocates a zero-initialized array of the given shape. Zero duals are
// constants: their derivative vectors are empty.
func New(shape Shape) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Array{
		buf:    newBuffer(shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// Shape returns the array's shape.
func (a *Array) Shape() Shape {
	return a.shape
}

// Strides returns the array's element strides. Broadcast dimensions have
// stride zero.
func (a *Array) Strides() []int {
	return a.stride
}

// NumElements returns the total number of logical elements.
func (a *Array) NumElements() int {
	return a.shape.NumElements()
}

// Data returns the element slice starting at the array's offset.
// Flat positions computed from Strides() index into it directly.
//
// WARNING: this is the live buffer, not a copy.
func (a *Array) Data() []autograd.Dual {
	return a.buf.data[a.offset:]
}

// flatOffset converts dimension indices into a buffer position relative to
// the array's offset. Panics on out-of-range indices.
func (a *Array) flatOffset(indices []int) int {
	if len(indices) != len(a.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(a.shape), len(indices)))
	}
	offset := 0
	for i, ix := range indices {
		if ix < 0 || ix >= a.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for axis %d (size %d)", ix, i, a.shape[i]))
		}
		offset += ix * a.stride[i]
	}
	return offset
}

// At returns a copy of the element at the given indices.
func (a *Array) At(indices ...int) autograd.Dual {
	return a.buf.data[a.offset+a.flatOffset(indices)]
}

// Set stores an element at the given indices. Must not be called on
// broadcast views while other computations read them.
func (a *Array) Set(d autograd.Dual, indices ...int) {
	a.buf.data[a.offset+a.flatOffset(indices)] = d
}

// Release drops this array's reference to the underlying buffer. The buffer
// is reported as freed once the owner and every view released it. Calling
// Release is optional (the garbage collector reclaims unreleased buffers),
// but it is what makes allocation tracking diagnostics complete.
func (a *Array) Release() {
	if a.buf != nil {
		a.buf.release()
		a.buf = nil
	}
}

// Clone copies the array into a fresh contiguous buffer. Broadcast views are
// materialized; derivative vectors are shared (duals are value types whose
// Grad slices are never mutated in place).
func (a *Array) Clone() *Array {
	out := &Array{
		buf:    newBuffer(a.NumElements()),
		shape:  a.shape.Clone(),
		stride: a.shape.ComputeStrides(),
	}
	a.iterate(func(flat int, d autograd.Dual) {
		out.buf.data[flat] = d
	})
	return out
}

// isContiguous reports whether elements are laid out in dense row-major
// order starting at the array's offset.
func (a *Array) isContiguous() bool {
	expect := a.shape.ComputeStrides()
	for i := range expect {
		if a.stride[i] != expect[i] {
			return false
		}
	}
	return true
}

// iterate visits every logical element in row-major order, passing the
// dense output position and the element value.
func (a *Array) iterate(visit func(flat int, d autograd.Dual)) {
	n := a.NumElements()
	if n == 0 {
		return
	}
	if len(a.shape) == 0 {
		visit(0, a.buf.data[a.offset])
		return
	}

	// Odometer over the multi-index; src tracks the strided buffer position.
	idx := make([]int, len(a.shape))
	src := 0
	for flat := 0; flat < n; flat++ {
		visit(flat, a.buf.data[a.offset+src])

		for axis := len(a.shape) - 1; axis >= 0; axis-- {
			idx[axis]++
			src += a.stride[axis]
			if idx[axis] < a.shape[axis] {
				break
			}
			src -= idx[axis] * a.stride[axis]
			idx[axis] = 0
		}
	}
}

// Iterate visits every logical element in row-major order, passing the
// dense output position and the element value. Views with broadcast or
// transposed strides are visited in their logical order, not buffer order.
func (a *Array) Iterate(visit func(flat int, d autograd.Dual)) {
	a.iterate(visit)
}

// Equal reports whether both arrays have the same shape and bit-identical
// primal values. Derivatives are not compared.
func (a *Array) Equal(other *Array) bool {
	if !a.shape.Equal(other.shape) {
		return false
	}
	equal := true
	vals := make([]float64, a.NumElements())
	a.iterate(func(flat int, d autograd.Dual) { vals[flat] = d.Value })
	other.iterate(func(flat int, d autograd.Dual) {
		if vals[flat] != d.Value {
			equal = false
		}
	})
	return equal
}

// String gives a short debug description.
func (a *Array) String() string {
	return fmt.Sprintf("Array%v (%d params wide)", a.shape, a.GradWidth())
}

// GradWidth returns the widest stored derivative vector across all
// elements. Zero means the array is constant.
func (a *Array) GradWidth() int {
	width := 0
	a.iterate(func(_ int, d autograd.Dual) {
		if len(d.Grad) > width {
			width = len(d.Grad)
		}
	})
	return width
}
