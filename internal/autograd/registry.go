package autograd

import "sync/atomic"

// ParameterIndex identifies one trainable scalar. Indices are assigned
// densely starting at zero and are never reused for the lifetime of the
// graph they belong to.
type ParameterIndex int

// Registry hands out parameter indices during network construction.
//
// Every trainable scalar calls Allocate exactly once when it is initialized,
// before any forward pass reads derivative vectors seeded from it. The total
// count is not known up front: derivative vectors created early stay valid
// because they are zero-extended to the current count whenever they are read
// (see Dual).
//
// A Registry is an explicit handle owned by the graph being built, not
// process-wide state, so independent training graphs never interfere.
//
// Example:
//
//	reg := autograd.NewRegistry()
//	w := autograd.Seed(0.5, reg.Allocate())
//	b := autograd.Seed(0.0, reg.Allocate())
//	// reg.Count() == 2
type Registry struct {
	count atomic.Int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Allocate returns the next unused parameter index and advances the count.
// It cannot fail; the counter is unbounded.
//
// The counter is atomic so that allocation is safe even if layers are
// constructed from multiple goroutines, but the count must be treated as
// read-only once forward passes begin.
func (r *Registry) Allocate() ParameterIndex {
	return ParameterIndex(r.count.Add(1) - 1)
}

// Count returns the number of parameters allocated so far.
func (r *Registry) Count() int {
	return int(r.count.Load())
}
