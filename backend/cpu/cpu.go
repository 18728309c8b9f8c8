// Package cpu exposes the CPU execution backend.
package cpu

import (
	internalcpu "github.com/simonwuelker/deep-thought/internal/backend/cpu"
	"github.com/simonwuelker/deep-thought/tensor"
)

// Backend executes dual-number array operations on the CPU.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend with default row parallelism.
func New() *Backend { return internalcpu.New() }

// NewSequential creates a backend that never spawns goroutines.
func NewSequential() *Backend { return internalcpu.NewSequential() }
