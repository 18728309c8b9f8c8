package nn

import (
	"fmt"

	"github.com/simonwuelker/deep-thought/internal/autograd"
	"github.com/simonwuelker/deep-thought/internal/tensor"
)

// Layer is one fully connected layer: out = act(W·x + b).
//
// The weight matrix has shape (out, in) and the bias (out, 1), so inputs are
// column-major samples: x has shape (in, batch) and the output (out, batch).
// Both W and b are parameter arrays; their derivative seeds are allocated
// from the owning network's registry, weights first, then biases.
type Layer struct {
	in, out int
	act     Activation

	weight *tensor.Array // (out, in)
	bias   *tensor.Array // (out, 1)

	firstWeight autograd.ParameterIndex
	firstBias   autograd.ParameterIndex
}

// NewLayer creates a layer with Glorot-initialized weights and zero biases.
func NewLayer(in, out int, act Activation, reg *autograd.Registry) (*Layer, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("layer dimensions must be positive, got (%d, %d)", in, out)
	}

	weight, fw, err := tensor.Glorot(tensor.Shape{out, in}, in, out, reg)
	if err != nil {
		return nil, err
	}
	bias, fb, err := tensor.NewParameterArray(nil, tensor.Shape{out, 1}, reg)
	if err != nil {
		weight.Release()
		return nil, err
	}

	return &Layer{
		in: in, out: out, act: act,
		weight: weight, bias: bias,
		firstWeight: fw, firstBias: fb,
	}, nil
}

// LoadLayer creates a layer from explicit primal values, re-seeding every
// element through reg. Used when restoring a checkpoint.
func LoadLayer(in, out int, act Activation, weights, biases []float64, reg *autograd.Registry) (*Layer, error) {
	weight, fw, err := tensor.NewParameterArray(weights, tensor.Shape{out, in}, reg)
	if err != nil {
		return nil, fmt.Errorf("layer weights: %w", err)
	}
	bias, fb, err := tensor.NewParameterArray(biases, tensor.Shape{out, 1}, reg)
	if err != nil {
		weight.Release()
		return nil, fmt.Errorf("layer biases: %w", err)
	}

	return &Layer{
		in: in, out: out, act: act,
		weight: weight, bias: bias,
		firstWeight: fw, firstBias: fb,
	}, nil
}

// Forward computes act(W·x + b) for x of shape (in, batch). The bias column
// broadcasts across the batch.
func (l *Layer) Forward(b tensor.Backend, x *tensor.Array) (*tensor.Array, error) {
	shape := x.Shape()
	if len(shape) != 2 || shape[0] != l.in {
		return nil, &tensor.ShapeError{Op: fmt.Sprintf("layer (%d→%d) forward", l.in, l.out), A: shape.Clone()}
	}

	z, err := b.MatMul(l.weight, x, l.bias)
	if err != nil {
		return nil, err
	}
	defer z.Release()

	return l.act.Apply(b, z)
}

// In returns the input width.
func (l *Layer) In() int { return l.in }

// Out returns the output width.
func (l *Layer) Out() int { return l.out }

// Activation returns the layer's activation.
func (l *Layer) Activation() Activation { return l.act }

// Weight returns the (out, in) weight parameter array. Mutating its primals
// (as the optimizer does) is allowed; the derivative seeds must stay intact.
func (l *Layer) Weight() *tensor.Array { return l.weight }

// Bias returns the (out, 1) bias parameter array.
func (l *Layer) Bias() *tensor.Array { return l.bias }

// WeightIndex returns the parameter index of weight element (i, j).
func (l *Layer) WeightIndex(i, j int) autograd.ParameterIndex {
	return l.firstWeight + autograd.ParameterIndex(i*l.in+j)
}

// BiasIndex returns the parameter index of bias element i.
func (l *Layer) BiasIndex(i int) autograd.ParameterIndex {
	return l.firstBias + autograd.ParameterIndex(i)
}

// ParameterCount returns the number of trainable scalars in the layer.
func (l *Layer) ParameterCount() int { return l.out*l.in + l.out }

// Release drops the layer's references to its parameter buffers.
func (l *Layer) Release() {
	l.weight.Release()
	l.bias.Release()
}
