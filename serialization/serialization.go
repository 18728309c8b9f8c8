// Package serialization exposes network checkpoint save and load.
package serialization

import (
	"io"

	"github.com/simonwuelker/deep-thought/internal/nn"
	"github.com/simonwuelker/deep-thought/internal/serialization"
	"github.com/simonwuelker/deep-thought/internal/tensor"
)

// ErrInvalidCheckpoint is wrapped by every structural decode failure.
var ErrInvalidCheckpoint = serialization.ErrInvalidCheckpoint

// Save writes net's topology and primal parameter values to w.
func Save(w io.Writer, net *nn.Network) error { return serialization.Save(w, net) }

// Load reads a checkpoint from r and rebuilds the network on backend.
func Load(r io.Reader, backend tensor.Backend) (*nn.Network, error) {
	return serialization.Load(r, backend)
}
