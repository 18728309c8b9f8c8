// Package serialization saves and restores network checkpoints.
//
// A checkpoint stores layer topology, activation kinds and primal parameter
// values as JSON. Derivative seeds are not stored: loading re-seeds every
// parameter through a fresh registry, so a restored network trains exactly
// like the original.
package serialization

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/simonwuelker/deep-thought/internal/nn"
	"github.com/simonwuelker/deep-thought/internal/tensor"
)

// ErrInvalidCheckpoint is wrapped by every structural decode failure.
var ErrInvalidCheckpoint = errors.New("invalid checkpoint")

// formatVersion is bumped on incompatible layout changes.
const formatVersion = 1

type checkpoint struct {
	Version int           `json:"version"`
	Layers  []layerRecord `json:"layers"`
}

type layerRecord struct {
	In         int       `json:"in"`
	Out        int       `json:"out"`
	Activation string    `json:"activation"`
	Slope      float64   `json:"slope,omitempty"`
	Weights    []float64 `json:"weights"`
	Biases     []float64 `json:"biases"`
}

// Save writes net's topology and primal parameter values to w.
func Save(w io.Writer, net *nn.Network) error {
	cp := checkpoint{Version: formatVersion}
	for _, l := range net.Layers() {
		cp.Layers = append(cp.Layers, layerRecord{
			In:         l.In(),
			Out:        l.Out(),
			Activation: l.Activation().Name(),
			Slope:      l.Activation().Slope(),
			Weights:    l.Weight().Float64s(),
			Biases:     l.Bias().Float64s(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cp); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// Load reads a checkpoint from r and rebuilds the network on the given
// backend. Every parameter is seeded through the new network's registry, so
// parameter indices are dense again regardless of how the saved network had
// allocated them.
func Load(r io.Reader, backend tensor.Backend) (*nn.Network, error) {
	var cp checkpoint
	dec := json.NewDecoder(r)
	if err := dec.Decode(&cp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCheckpoint, err)
	}
	if cp.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidCheckpoint, cp.Version)
	}
	if len(cp.Layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrInvalidCheckpoint)
	}

	net := nn.NewNetwork(backend)
	for i, rec := range cp.Layers {
		act, err := nn.ActivationFromName(rec.Activation, rec.Slope)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %v", ErrInvalidCheckpoint, i, err)
		}
		if len(rec.Weights) != rec.In*rec.Out || len(rec.Biases) != rec.Out {
			return nil, fmt.Errorf("%w: layer %d: %d weights and %d biases for a (%d, %d) layer",
				ErrInvalidCheckpoint, i, len(rec.Weights), len(rec.Biases), rec.Out, rec.In)
		}
		if err := net.AddLoadedLayer(rec.In, rec.Out, act, rec.Weights, rec.Biases); err != nil {
			return nil, fmt.Errorf("%w: layer %d: %v", ErrInvalidCheckpoint, i, err)
		}
	}
	return net, nil
}
