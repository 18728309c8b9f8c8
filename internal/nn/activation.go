// Package nn provides feedforward network building blocks on top of the
// dual-number array engine: activations, layers, networks and losses.
//
// All derivatives are carried forward through the arrays themselves, so a
// single Forward pass yields both predictions and per-parameter gradients.
package nn

import (
	"fmt"
	"math"

	"github.com/simonwuelker/deep-thought/internal/autograd"
	"github.com/simonwuelker/deep-thought/internal/tensor"
)

type activationKind int

const (
	kindIdentity activationKind = iota
	kindReLU
	kindLeakyReLU
	kindSigmoid
	kindTanh
	kindSoftmax
)

// Activation is a closed set of layer activation functions. The zero value
// is Identity. Values are created through the constructors below; there is
// no way to smuggle in an arbitrary function, which keeps checkpoints
// round-trippable.
type Activation struct {
	kind  activationKind
	slope float64
}

// Identity passes values through unchanged.
func Identity() Activation { return Activation{kind: kindIdentity} }

// ReLU is max(0, x). The derivative at exactly x = 0 is taken as 0.
func ReLU() Activation { return Activation{kind: kindReLU} }

// LeakyReLU is x for x > 0 and slope·x otherwise.
func LeakyReLU(slope float64) Activation {
	return Activation{kind: kindLeakyReLU, slope: slope}
}

// Sigmoid is 1 / (1 + exp(-x)).
func Sigmoid() Activation { return Activation{kind: kindSigmoid} }

// Tanh is the hyperbolic tangent.
func Tanh() Activation { return Activation{kind: kindTanh} }

// Softmax normalizes each column of a (features, batch) array to a
// probability distribution. The implementation shifts by the column maximum
// before exponentiating; the shift is a plain constant and carries no
// derivative.
func Softmax() Activation { return Activation{kind: kindSoftmax} }

var activationNames = map[activationKind]string{
	kindIdentity:  "identity",
	kindReLU:      "relu",
	kindLeakyReLU: "leaky_relu",
	kindSigmoid:   "sigmoid",
	kindTanh:      "tanh",
	kindSoftmax:   "softmax",
}

// Name returns the stable identifier used in checkpoints.
func (a Activation) Name() string { return activationNames[a.kind] }

// Slope returns the negative-side slope. It is only meaningful for
// LeakyReLU and is zero for every other activation.
func (a Activation) Slope() float64 { return a.slope }

func (a Activation) String() string {
	if a.kind == kindLeakyReLU {
		return fmt.Sprintf("leaky_relu(%g)", a.slope)
	}
	return a.Name()
}

// ActivationFromName restores an activation from its checkpoint identifier.
func ActivationFromName(name string, slope float64) (Activation, error) {
	for kind, n := range activationNames {
		if n == name {
			if kind == kindLeakyReLU {
				return Activation{kind: kind, slope: slope}, nil
			}
			return Activation{kind: kind}, nil
		}
	}
	return Activation{}, fmt.Errorf("unknown activation %q", name)
}

// Apply evaluates the activation element-wise (column-wise for Softmax),
// producing a new array with chain-rule derivatives.
func (a Activation) Apply(b tensor.Backend, x *tensor.Array) (*tensor.Array, error) {
	switch a.kind {
	case kindIdentity:
		return x.Clone(), nil
	case kindReLU:
		return b.Apply(x, autograd.ReLU)
	case kindLeakyReLU:
		slope := a.slope
		return b.Apply(x, func(d autograd.Dual) autograd.Dual {
			return autograd.LeakyReLU(slope, d)
		})
	case kindSigmoid:
		return b.Apply(x, autograd.Sigmoid)
	case kindTanh:
		return b.Apply(x, autograd.Tanh)
	case kindSoftmax:
		return softmax(x)
	default:
		return nil, fmt.Errorf("unknown activation kind %d", a.kind)
	}
}

// softmax normalizes every column of a 2D array independently.
func softmax(x *tensor.Array) (*tensor.Array, error) {
	shape := x.Shape()
	if len(shape) != 2 {
		return nil, &tensor.ShapeError{Op: "softmax", A: shape.Clone()}
	}
	rows, cols := shape[0], shape[1]

	out, err := tensor.New(shape)
	if err != nil {
		return nil, err
	}

	exps := make([]autograd.Dual, rows)
	for j := 0; j < cols; j++ {
		// Shift by the column max so exp never overflows. The shift
		// cancels in the quotient and contributes no derivative.
		shift := math.Inf(-1)
		for i := 0; i < rows; i++ {
			if v := x.At(i, j).Value; v > shift {
				shift = v
			}
		}

		total := autograd.Constant(0)
		for i := 0; i < rows; i++ {
			e := autograd.Exp(autograd.Sub(x.At(i, j), autograd.Constant(shift)))
			exps[i] = e
			total = autograd.Add(total, e)
		}
		for i := 0; i < rows; i++ {
			q, err := autograd.Div(exps[i], total)
			if err != nil {
				out.Release()
				return nil, fmt.Errorf("softmax: %w", err)
			}
			out.Set(q, i, j)
		}
	}
	return out, nil
}
