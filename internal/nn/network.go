package nn

import (
	"fmt"

	"github.com/simonwuelker/deep-thought/internal/autograd"
	"github.com/simonwuelker/deep-thought/internal/tensor"
)

// Network is a feedforward stack of fully connected layers. It owns the
// parameter registry all of its layers seed their derivatives from, so two
// networks never share parameter indices.
//
// Example:
//
//	net := nn.NewNetwork(cpu.New())
//	net.AddLayer(2, 3, nn.Sigmoid())
//	net.AddLayer(3, 1, nn.Sigmoid())
//	out, err := net.Forward(batch) // batch is (2, batchSize)
type Network struct {
	backend tensor.Backend
	reg     *autograd.Registry
	layers  []*Layer
}

// NewNetwork creates an empty network executing on b.
func NewNetwork(b tensor.Backend) *Network {
	return &Network{
		backend: b,
		reg:     autograd.NewRegistry(),
	}
}

// AddLayer appends a fully connected (in → out) layer with freshly
// initialized parameters. in must match the previous layer's output width.
func (n *Network) AddLayer(in, out int, act Activation) error {
	if len(n.layers) > 0 {
		if prev := n.layers[len(n.layers)-1].Out(); prev != in {
			return fmt.Errorf("layer input width %d does not match previous output width %d", in, prev)
		}
	}
	layer, err := NewLayer(in, out, act, n.reg)
	if err != nil {
		return err
	}
	n.layers = append(n.layers, layer)
	return nil
}

// AddLoadedLayer appends a layer restored from explicit primal values.
func (n *Network) AddLoadedLayer(in, out int, act Activation, weights, biases []float64) error {
	if len(n.layers) > 0 {
		if prev := n.layers[len(n.layers)-1].Out(); prev != in {
			return fmt.Errorf("layer input width %d does not match previous output width %d", in, prev)
		}
	}
	layer, err := LoadLayer(in, out, act, weights, biases, n.reg)
	if err != nil {
		return err
	}
	n.layers = append(n.layers, layer)
	return nil
}

// Forward runs x of shape (inputs, batch) through every layer. Intermediate
// activations are released as soon as the next layer has consumed them.
func (n *Network) Forward(x *tensor.Array) (*tensor.Array, error) {
	if len(n.layers) == 0 {
		return nil, fmt.Errorf("network has no layers")
	}

	cur := x
	for i, layer := range n.layers {
		next, err := layer.Forward(n.backend, cur)
		if err != nil {
			if cur != x {
				cur.Release()
			}
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if cur != x {
			cur.Release()
		}
		cur = next
	}
	return cur, nil
}

// Layers returns the layer stack in forward order.
func (n *Network) Layers() []*Layer { return n.layers }

// Backend returns the backend the network executes on.
func (n *Network) Backend() tensor.Backend { return n.backend }

// Registry returns the parameter registry owned by this network.
func (n *Network) Registry() *autograd.Registry { return n.reg }

// ParameterCount returns the total number of trainable scalars.
func (n *Network) ParameterCount() int {
	total := 0
	for _, l := range n.layers {
		total += l.ParameterCount()
	}
	return total
}

// Release drops all layer parameter buffers.
func (n *Network) Release() {
	for _, l := range n.layers {
		l.Release()
	}
	n.layers = nil
}
