package nn

import (
	"fmt"

	"github.com/simonwuelker/deep-thought/internal/autograd"
	"github.com/simonwuelker/deep-thought/internal/tensor"
)

// Reduction selects how per-element losses collapse to a scalar.
type Reduction int

const (
	// Mean divides the summed loss by the element count.
	Mean Reduction = iota
	// Sum leaves the summed loss unscaled.
	Sum
)

// SumElements adds up every element of a into one dual number, derivatives
// included. Summation runs in flat row-major order so results are
// reproducible.
func SumElements(a *tensor.Array) autograd.Dual {
	total := autograd.Constant(0)
	a.Iterate(func(_ int, d autograd.Dual) {
		total = autograd.Add(total, d)
	})
	return total
}

// MeanElements is SumElements scaled by 1/n.
func MeanElements(a *tensor.Array) autograd.Dual {
	return autograd.Scale(1/float64(a.NumElements()), SumElements(a))
}

// MSE computes the mean (or summed) squared error between a prediction and
// its target, both of the same shape. The returned dual carries the loss
// gradient with respect to every parameter that flowed into pred.
func MSE(b tensor.Backend, pred, target *tensor.Array, r Reduction) (autograd.Dual, error) {
	if !pred.Shape().Equal(target.Shape()) {
		return autograd.Dual{}, &tensor.ShapeError{
			Op: "mse", A: pred.Shape().Clone(), B: target.Shape().Clone(),
		}
	}

	diff, err := b.Sub(pred, target)
	if err != nil {
		return autograd.Dual{}, fmt.Errorf("mse: %w", err)
	}
	defer diff.Release()

	sq, err := b.Mul(diff, diff)
	if err != nil {
		return autograd.Dual{}, fmt.Errorf("mse: %w", err)
	}
	defer sq.Release()

	switch r {
	case Sum:
		return SumElements(sq), nil
	default:
		return MeanElements(sq), nil
	}
}
