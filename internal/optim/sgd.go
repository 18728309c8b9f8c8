package optim

import (
	"fmt"

	"github.com/simonwuelker/deep-thought/internal/autograd"
	"github.com/simonwuelker/deep-thought/internal/nn"
)

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	// LR is the learning rate (default 0.01).
	LR float64
	// Momentum is the velocity decay factor (default 0, plain SGD).
	Momentum float64
}

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule:
//
//	velocity = momentum·velocity + lr·gradient
//	param    = param − velocity
//
// Velocity buffers are allocated per layer when the optimizer is created,
// so an SGD instance is tied to one network.
type SGD struct {
	lr       float64
	momentum float64

	vWeight [][]float64
	vBias   [][]float64
}

// NewSGD creates an SGD optimizer sized for net's layers.
func NewSGD(net *nn.Network, cfg SGDConfig) *SGD {
	if cfg.LR < 0 {
		panic(fmt.Sprintf("learning rate must be >= 0, got %g", cfg.LR))
	}
	if cfg.Momentum < 0 {
		panic(fmt.Sprintf("momentum must be >= 0, got %g", cfg.Momentum))
	}
	if cfg.LR == 0 {
		cfg.LR = 0.01
	}

	layers := net.Layers()
	s := &SGD{
		lr:       cfg.LR,
		momentum: cfg.Momentum,
		vWeight:  make([][]float64, len(layers)),
		vBias:    make([][]float64, len(layers)),
	}
	for i, l := range layers {
		s.vWeight[i] = make([]float64, l.Out()*l.In())
		s.vBias[i] = make([]float64, l.Out())
	}
	return s
}

// LR returns the configured learning rate.
func (s *SGD) LR() float64 { return s.lr }

// Step reads the loss gradient for every parameter index and descends the
// layer primals in place. Derivative seeds are left untouched, so the next
// forward pass differentiates against the updated weights.
func (s *SGD) Step(net *nn.Network, loss autograd.Dual) {
	for li, layer := range net.Layers() {
		firstW := layer.WeightIndex(0, 0)
		w := layer.Weight().Data()
		vw := s.vWeight[li]
		for f := range vw {
			g := loss.Derivative(firstW + autograd.ParameterIndex(f))
			vw[f] = s.momentum*vw[f] + s.lr*g
			w[f].Value -= vw[f]
		}

		firstB := layer.BiasIndex(0)
		b := layer.Bias().Data()
		vb := s.vBias[li]
		for f := range vb {
			g := loss.Derivative(firstB + autograd.ParameterIndex(f))
			vb[f] = s.momentum*vb[f] + s.lr*g
			b[f].Value -= vb[f]
		}
	}
}
