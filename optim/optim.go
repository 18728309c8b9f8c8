// Package optim exposes gradient descent over forward-mode gradients.
package optim

import (
	"github.com/simonwuelker/deep-thought/internal/nn"
	"github.com/simonwuelker/deep-thought/internal/optim"
)

// Optimizer updates a network's parameters from the gradient carried by a
// loss value.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with optional momentum.
type SGD = optim.SGD

// SGDConfig holds SGD configuration.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer sized for net's layers.
func NewSGD(net *nn.Network, cfg SGDConfig) *SGD { return optim.NewSGD(net, cfg) }
