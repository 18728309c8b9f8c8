// Package nn exposes the feedforward network building blocks: activations,
// layers, networks and losses.
//
// Example:
//
//	net := nn.NewNetwork(cpu.New())
//	net.AddLayer(2, 3, nn.Sigmoid())
//	net.AddLayer(3, 1, nn.Sigmoid())
package nn

import (
	"github.com/simonwuelker/deep-thought/internal/autograd"
	"github.com/simonwuelker/deep-thought/internal/nn"
	"github.com/simonwuelker/deep-thought/internal/tensor"
)

// Activation is the closed set of layer activation functions.
type Activation = nn.Activation

// Activation constructors.
func Identity() Activation               { return nn.Identity() }
func ReLU() Activation                   { return nn.ReLU() }
func LeakyReLU(slope float64) Activation { return nn.LeakyReLU(slope) }
func Sigmoid() Activation                { return nn.Sigmoid() }
func Tanh() Activation                   { return nn.Tanh() }
func Softmax() Activation                { return nn.Softmax() }

// ActivationFromName restores an activation from its checkpoint identifier.
func ActivationFromName(name string, slope float64) (Activation, error) {
	return nn.ActivationFromName(name, slope)
}

// Layer is one fully connected layer.
type Layer = nn.Layer

// Network is a feedforward stack of layers owning its parameter registry.
type Network = nn.Network

// NewNetwork creates an empty network executing on b.
func NewNetwork(b tensor.Backend) *Network { return nn.NewNetwork(b) }

// Reduction selects how per-element losses collapse to a scalar.
type Reduction = nn.Reduction

const (
	Mean Reduction = nn.Mean
	Sum  Reduction = nn.Sum
)

// MSE computes the mean (or summed) squared error; the returned dual
// carries the full loss gradient.
func MSE(b tensor.Backend, pred, target *tensor.Array, r Reduction) (autograd.Dual, error) {
	return nn.MSE(b, pred, target, r)
}
