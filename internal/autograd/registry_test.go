package autograd

import "testing"

func TestRegistryDenseIndices(t *testing.T) {
	reg := NewRegistry()

	const n = 100
	seen := make(map[ParameterIndex]bool, n)
	for i := 0; i < n; i++ {
		idx := reg.Allocate()
		if idx != ParameterIndex(i) {
			t.Fatalf("allocation %d returned index %d", i, idx)
		}
		if seen[idx] {
			t.Fatalf("index %d handed out twice", idx)
		}
		seen[idx] = true

		// Interleave with construction that does not allocate.
		_ = Constant(float64(i))
	}

	if reg.Count() != n {
		t.Errorf("Count() = %d, want %d", reg.Count(), n)
	}
}

func TestIndependentRegistries(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	a.Allocate()
	a.Allocate()

	if got := b.Allocate(); got != 0 {
		t.Errorf("fresh registry allocated index %d, want 0", got)
	}
	if a.Count() != 2 || b.Count() != 1 {
		t.Errorf("registries interfered: a=%d b=%d", a.Count(), b.Count())
	}
}
