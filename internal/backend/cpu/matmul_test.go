package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/simonwuelker/deep-thought/internal/autograd"
	"github.com/simonwuelker/deep-thought/internal/tensor"
)

func TestMatMulDerivatives(t *testing.T) {
	backend := New()
	reg := autograd.NewRegistry()

	a, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)

	b, first, err := tensor.NewParameterArray([]float64{5, 6}, tensor.Shape{2, 1}, reg)
	require.NoError(t, err)
	require.Equal(t, autograd.ParameterIndex(0), first)

	c, err := backend.MatMul(a, b, nil)
	require.NoError(t, err)
	require.True(t, c.Shape().Equal(tensor.Shape{2, 1}))

	// C = [[1·5+2·6], [3·5+4·6]] = [[17], [39]]
	assert.Equal(t, 17.0, c.At(0, 0).Value)
	assert.Equal(t, 39.0, c.At(1, 0).Value)

	// ∂C/∂B is just A.
	assert.Equal(t, 1.0, c.At(0, 0).Derivative(0))
	assert.Equal(t, 2.0, c.At(0, 0).Derivative(1))
	assert.Equal(t, 3.0, c.At(1, 0).Derivative(0))
	assert.Equal(t, 4.0, c.At(1, 0).Derivative(1))
}

func TestMatMulBothSidesDifferentiable(t *testing.T) {
	// C = a·b with a and b both parameters: product rule per element.
	backend := New()
	reg := autograd.NewRegistry()

	a, ia, err := tensor.NewParameterArray([]float64{3}, tensor.Shape{1, 1}, reg)
	require.NoError(t, err)
	b, ib, err := tensor.NewParameterArray([]float64{7}, tensor.Shape{1, 1}, reg)
	require.NoError(t, err)

	c, err := backend.MatMul(a, b, nil)
	require.NoError(t, err)

	assert.Equal(t, 21.0, c.At(0, 0).Value)
	assert.Equal(t, 7.0, c.At(0, 0).Derivative(ia))
	assert.Equal(t, 3.0, c.At(0, 0).Derivative(ib))
}

func TestMatMulBias(t *testing.T) {
	backend := New()
	reg := autograd.NewRegistry()

	w, err := tensor.FromSlice([]float64{1, 0, 0, 1}, tensor.Shape{2, 2})
	require.NoError(t, err)
	x, err := tensor.FromSlice([]float64{10, 20}, tensor.Shape{2, 1})
	require.NoError(t, err)

	// (2,1) bias broadcasts across the single output column.
	bias, ib, err := tensor.NewParameterArray([]float64{1, 2}, tensor.Shape{2, 1}, reg)
	require.NoError(t, err)

	y, err := backend.MatMul(w, x, bias)
	require.NoError(t, err)

	assert.Equal(t, 11.0, y.At(0, 0).Value)
	assert.Equal(t, 22.0, y.At(1, 0).Value)
	assert.Equal(t, 1.0, y.At(0, 0).Derivative(ib))
	assert.Equal(t, 0.0, y.At(0, 0).Derivative(ib+1))
	assert.Equal(t, 1.0, y.At(1, 0).Derivative(ib+1))
}

func TestMatMulBiasBroadcastAcrossColumns(t *testing.T) {
	backend := New()
	reg := autograd.NewRegistry()

	w, _, err := tensor.NewParameterArray([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, reg)
	require.NoError(t, err)
	x, err := tensor.FromSlice([]float64{1, 1, 1, 1, 1, 1}, tensor.Shape{2, 3})
	require.NoError(t, err)
	bias, err := tensor.FromSlice([]float64{100, 200}, tensor.Shape{2, 1})
	require.NoError(t, err)

	y, err := backend.MatMul(w, x, bias)
	require.NoError(t, err)
	require.True(t, y.Shape().Equal(tensor.Shape{2, 3}))

	for j := 0; j < 3; j++ {
		assert.Equal(t, 103.0, y.At(0, j).Value)
		assert.Equal(t, 207.0, y.At(1, j).Value)
	}
}

func TestMatMulBatched(t *testing.T) {
	backend := New()

	// Two independent 2×2 · 2×1 products in one call.
	a, err := tensor.FromSlice([]float64{
		1, 0,
		0, 1,

		2, 0,
		0, 2,
	}, tensor.Shape{2, 2, 2})
	require.NoError(t, err)

	b, err := tensor.FromSlice([]float64{5, 6}, tensor.Shape{2, 1})
	require.NoError(t, err)

	c, err := backend.MatMul(a, b, nil)
	require.NoError(t, err)
	require.True(t, c.Shape().Equal(tensor.Shape{2, 2, 1}))

	assert.Equal(t, 5.0, c.At(0, 0, 0).Value)
	assert.Equal(t, 6.0, c.At(0, 1, 0).Value)
	assert.Equal(t, 10.0, c.At(1, 0, 0).Value)
	assert.Equal(t, 12.0, c.At(1, 1, 0).Value)
}

func TestMatMulInnerDimensionMismatch(t *testing.T) {
	backend := New()

	a, err := tensor.FromSlice(make([]float64, 6), tensor.Shape{2, 3})
	require.NoError(t, err)
	b, err := tensor.FromSlice(make([]float64, 8), tensor.Shape{4, 2})
	require.NoError(t, err)

	_, err = backend.MatMul(a, b, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
}

func TestMatMulReproducible(t *testing.T) {
	// Parallel and sequential execution must accumulate derivatives in the
	// same order and produce bit-identical results.
	reg := autograd.NewRegistry()

	a, _, err := tensor.NewParameterArray(ramp(32*16, 0.37), tensor.Shape{32, 16}, reg)
	require.NoError(t, err)
	b, _, err := tensor.NewParameterArray(ramp(16*8, -0.21), tensor.Shape{16, 8}, reg)
	require.NoError(t, err)

	par, err := New().MatMul(a, b, nil)
	require.NoError(t, err)
	seq, err := NewSequential().MatMul(a, b, nil)
	require.NoError(t, err)

	require.True(t, par.Equal(seq))
	n := par.NumElements()
	pd, sd := par.Data(), seq.Data()
	for e := 0; e < n; e++ {
		require.Equal(t, sd[e].Grad, pd[e].Grad, "element %d", e)
	}
}

// TestMatMulGradientCheck validates forward-mode derivatives of
// sum(A·B) against central finite differences over B's entries.
func TestMatMulGradientCheck(t *testing.T) {
	backend := New()
	reg := autograd.NewRegistry()

	aVals := []float64{0.5, -1.25, 2.0, 0.75, 1.5, -0.5}
	bVals := []float64{1.0, -2.0, 0.25, 3.0, -1.0, 0.5}

	a, err := tensor.FromSlice(aVals, tensor.Shape{2, 3})
	require.NoError(t, err)
	b, first, err := tensor.NewParameterArray(bVals, tensor.Shape{3, 2}, reg)
	require.NoError(t, err)

	c, err := backend.MatMul(a, b, nil)
	require.NoError(t, err)

	// Forward-mode gradient of the summed output.
	forward := make([]float64, len(bVals))
	for p := range forward {
		for _, d := range c.Data()[:c.NumElements()] {
			forward[p] += d.Derivative(first + autograd.ParameterIndex(p))
		}
	}

	sumProduct := func(x []float64) float64 {
		bx, err := tensor.FromSlice(x, tensor.Shape{3, 2})
		if err != nil {
			t.Fatal(err)
		}
		cx, err := backend.MatMul(a, bx, nil)
		if err != nil {
			t.Fatal(err)
		}
		total := 0.0
		for _, d := range cx.Data()[:cx.NumElements()] {
			total += d.Value
		}
		return total
	}

	numeric := fd.Gradient(nil, sumProduct, bVals, nil)
	for p := range forward {
		assert.InDelta(t, numeric[p], forward[p], 1e-6, "parameter %d", p)
	}
}

func ramp(n int, step float64) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = float64(i%13)*step - 1
	}
	return v
}
