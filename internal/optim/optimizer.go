// Package optim implements gradient descent over forward-mode gradients.
//
// There is no backward pass: a single forward evaluation leaves the full
// loss gradient inside the loss dual number, indexed by parameter index.
// Optimizers read those entries and update the layer primals in place,
// leaving the derivative seeds untouched.
//
// Example:
//
//	sgd := optim.NewSGD(net, optim.SGDConfig{LR: 0.3})
//	out, _ := net.Forward(samples)
//	loss, _ := nn.MSE(net.Backend(), out, labels, nn.Mean)
//	sgd.Step(net, loss)
package optim

import (
	"github.com/simonwuelker/deep-thought/internal/autograd"
	"github.com/simonwuelker/deep-thought/internal/nn"
)

// Optimizer updates a network's parameters from the gradient carried by a
// loss value.
type Optimizer interface {
	// Step applies one update. loss must have been computed through the
	// given network's parameters in the current forward pass.
	Step(net *nn.Network, loss autograd.Dual)
}
