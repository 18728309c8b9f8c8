package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/simonwuelker/deep-thought/internal/autograd"
	"github.com/simonwuelker/deep-thought/internal/parallel"
	"github.com/simonwuelker/deep-thought/internal/tensor"
)

// operand is a matmul input normalized to (batch, rows, cols) with element
// strides. 2D inputs get batch 1 with stride 0; a 3D input with batch 1 is
// broadcast the same way.
type operand struct {
	data                      []autograd.Dual
	batch, rows, cols         int
	strideB, strideR, strideC int
}

func normalize(a *tensor.Array) (operand, error) {
	shape, strides := a.Shape(), a.Strides()
	switch len(shape) {
	case 2:
		return operand{
			data: a.Data(),
			batch: 1, rows: shape[0], cols: shape[1],
			strideR: strides[0], strideC: strides[1],
		}, nil
	case 3:
		sb := strides[0]
		if shape[0] == 1 {
			sb = 0
		}
		return operand{
			data: a.Data(),
			batch: shape[0], rows: shape[1], cols: shape[2],
			strideB: sb, strideR: strides[1], strideC: strides[2],
		}, nil
	default:
		return operand{}, &tensor.ShapeError{Op: "matmul", A: shape.Clone()}
	}
}

// MatMul computes C = A·B (+ bias), the batched matrix-multiply-accumulate
// over dual numbers.
//
// A is (m,k) and B is (k,n), either optionally carrying a leading batch
// dimension (batch sizes must match or be 1). bias may be nil; otherwise it
// must broadcast to the output shape.
//
// For each output element, derivative = Σ_l (A[i,l].Grad × B[l,j].Value +
// B[l,j].Grad × A[i,l].Value), accumulated in ascending l directly into one
// preallocated (elements × width) gradient buffer; no per-term derivative
// vectors are allocated. The accumulation order is fixed, so repeated calls
// on the same inputs are bit-for-bit reproducible. Rows are computed in
// parallel; each output element is produced by exactly one goroutine.
//
// When neither operand nor the bias carries derivatives, the whole product
// is delegated to gonum's dense BLAS multiply.
func (c *Backend) MatMul(a, b, bias *tensor.Array) (*tensor.Array, error) {
	A, err := normalize(a)
	if err != nil {
		return nil, err
	}
	B, err := normalize(b)
	if err != nil {
		return nil, err
	}
	if A.cols != B.rows {
		return nil, &tensor.ShapeError{Op: "matmul", A: a.Shape().Clone(), B: b.Shape().Clone()}
	}

	batch := max(A.batch, B.batch)
	if (A.batch != batch && A.batch != 1) || (B.batch != batch && B.batch != 1) {
		return nil, &tensor.ShapeError{Op: "matmul batch", A: a.Shape().Clone(), B: b.Shape().Clone()}
	}

	m, k, n := A.rows, A.cols, B.cols
	var outShape tensor.Shape
	if len(a.Shape()) == 3 || len(b.Shape()) == 3 {
		outShape = tensor.Shape{batch, m, n}
	} else {
		outShape = tensor.Shape{m, n}
	}

	var biasData []autograd.Dual
	var biasStrides []int
	if bias != nil {
		biasStrides, err = bias.BroadcastStrides(outShape)
		if err != nil {
			return nil, fmt.Errorf("matmul bias: %w", err)
		}
		biasData = bias.Data()
	}
	biasOff := func(bi, i, j int) int {
		if len(outShape) == 3 {
			return bi*biasStrides[0] + i*biasStrides[1] + j*biasStrides[2]
		}
		return i*biasStrides[0] + j*biasStrides[1]
	}

	width := a.GradWidth()
	if w := b.GradWidth(); w > width {
		width = w
	}
	if bias != nil {
		if w := bias.GradWidth(); w > width {
			width = w
		}
	}

	out, err := tensor.New(outShape)
	if err != nil {
		return nil, err
	}
	dst := out.Data()

	if width == 0 {
		// Constant operands: pure primal GEMM via gonum/BLAS.
		c.matmulConstant(dst, A, B, batch, m, k, n, func(bi, i, j int) float64 {
			if bias == nil {
				return 0
			}
			return biasData[biasOff(bi, i, j)].Value
		})
		return out, nil
	}

	// One shared gradient buffer for the whole output; element e owns the
	// subslice [e*width, (e+1)*width). This is the dominant memory cost of
	// the engine: elements × parameter-count floats per result.
	gradData := make([]float64, outShape.NumElements()*width)

	parallel.ForRows(batch, m, func(bi, i int) {
		aRow := bi*A.strideB + i*A.strideR
		bBase := bi * B.strideB
		outRow := (bi*m + i) * n

		for j := 0; j < n; j++ {
			e := outRow + j
			g := gradData[e*width : (e+1)*width]

			sum := 0.0
			offA := aRow
			offB := bBase + j*B.strideC
			for l := 0; l < k; l++ {
				x := A.data[offA]
				y := B.data[offB]
				sum += x.Value * y.Value
				if len(x.Grad) > 0 {
					floats.AddScaled(g[:len(x.Grad)], y.Value, x.Grad)
				}
				if len(y.Grad) > 0 {
					floats.AddScaled(g[:len(y.Grad)], x.Value, y.Grad)
				}
				offA += A.strideC
				offB += B.strideR
			}

			if bias != nil {
				bv := biasData[biasOff(bi, i, j)]
				sum += bv.Value
				if len(bv.Grad) > 0 {
					floats.Add(g[:len(bv.Grad)], bv.Grad)
				}
			}
			dst[e] = autograd.Dual{Value: sum, Grad: g}
		}
	}, c.pool)

	return out, nil
}

// matmulConstant multiplies derivative-free operands through gonum's dense
// matrix product, one batch slice at a time.
func (c *Backend) matmulConstant(dst []autograd.Dual, A, B operand, batch, m, k, n int, biasVal func(bi, i, j int) float64) {
	av := make([]float64, m*k)
	bv := make([]float64, k*n)

	for bi := 0; bi < batch; bi++ {
		for i := 0; i < m; i++ {
			off := bi*A.strideB + i*A.strideR
			for l := 0; l < k; l++ {
				av[i*k+l] = A.data[off].Value
				off += A.strideC
			}
		}
		for l := 0; l < k; l++ {
			off := bi*B.strideB + l*B.strideR
			for j := 0; j < n; j++ {
				bv[l*n+j] = B.data[off].Value
				off += B.strideC
			}
		}

		var cm mat.Dense
		cm.Mul(mat.NewDense(m, k, av), mat.NewDense(k, n, bv))

		base := bi * m * n
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				dst[base+i*n+j] = autograd.Constant(cm.At(i, j) + biasVal(bi, i, j))
			}
		}
	}
}
