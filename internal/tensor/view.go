package tensor

import "fmt"

// view creates a non-owning array over the same buffer.
func (a *Array) view(shape Shape, stride []int, offset int) *Array {
	a.buf.addRef()
	return &Array{
		buf:    a.buf,
		shape:  shape,
		stride: stride,
		offset: offset,
	}
}

// BroadcastTo returns a view of the array stretched to target. Size-1
// dimensions (and missing leading dimensions) are broadcast with stride
// zero; no data is copied. Fails with ErrShapeMismatch when a dimension is
// neither 1 nor the target size.
func (a *Array) BroadcastTo(target Shape) (*Array, error) {
	stride, err := a.BroadcastStrides(target)
	if err != nil {
		return nil, err
	}
	return a.view(target.Clone(), stride, a.offset), nil
}

// BroadcastStrides computes the strides this array would have when
// broadcast to out: stride zero for stretched and padded dimensions, the
// array's own stride otherwise. This works for views as well as owners
// because it starts from the actual strides, not ones recomputed from the
// shape.
func (a *Array) BroadcastStrides(out Shape) ([]int, error) {
	pad := len(out) - len(a.shape)
	if pad < 0 {
		return nil, &ShapeError{Op: "broadcast", A: a.shape.Clone(), B: out.Clone()}
	}

	strides := make([]int, len(out))
	for i := range out {
		srcAxis := i - pad
		switch {
		case srcAxis < 0:
			strides[i] = 0
		case a.shape[srcAxis] == out[i]:
			strides[i] = a.stride[srcAxis]
		case a.shape[srcAxis] == 1:
			strides[i] = 0
		default:
			return nil, &ShapeError{Op: "broadcast", A: a.shape.Clone(), B: out.Clone()}
		}
	}
	return strides, nil
}

// Reshape returns a view with a new shape over the same elements. The
// element count must match and the array must be contiguous (reshape a
// Clone otherwise). Fails with ErrShapeMismatch.
func (a *Array) Reshape(dims ...int) (*Array, error) {
	shape := Shape(dims)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("reshape: %w", err)
	}
	if shape.NumElements() != a.NumElements() || !a.isContiguous() {
		return nil, &ShapeError{Op: "reshape", A: a.shape.Clone(), B: shape.Clone()}
	}
	return a.view(shape.Clone(), shape.ComputeStrides(), a.offset), nil
}

// Transpose returns a view of a 2D array with its axes swapped.
func (a *Array) Transpose() (*Array, error) {
	if len(a.shape) != 2 {
		return nil, &ShapeError{Op: "transpose", A: a.shape.Clone()}
	}
	return a.view(
		Shape{a.shape[1], a.shape[0]},
		[]int{a.stride[1], a.stride[0]},
		a.offset,
	), nil
}

// Borrow returns a view of the rectangular region [lo, hi) of the array.
// The view borrows the owner's buffer; it holds a reference so it can never
// observe a freed buffer.
func (a *Array) Borrow(lo, hi []int) (*Array, error) {
	if len(lo) != len(a.shape) || len(hi) != len(a.shape) {
		return nil, &ShapeError{Op: "borrow", A: a.shape.Clone()}
	}

	shape := make(Shape, len(a.shape))
	for i := range a.shape {
		if lo[i] < 0 || hi[i] > a.shape[i] || lo[i] > hi[i] {
			return nil, fmt.Errorf("borrow: bounds [%d, %d) invalid for axis %d (size %d): %w",
				lo[i], hi[i], i, a.shape[i], ErrShapeMismatch)
		}
		shape[i] = hi[i] - lo[i]
	}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("borrow: %w", err)
	}

	offset := a.offset
	for i, l := range lo {
		offset += l * a.stride[i]
	}

	stride := make([]int, len(a.stride))
	copy(stride, a.stride)
	return a.view(shape, stride, offset), nil
}
