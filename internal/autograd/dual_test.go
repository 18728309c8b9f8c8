package autograd

import (
	"errors"
	"math"
	"testing"
)

func assertClose(t *testing.T, want, got float64, msg string) {
	t.Helper()
	if math.Abs(want-got) > 1e-12 {
		t.Errorf("%s: expected %v, got %v", msg, want, got)
	}
}

func TestConstantArithmeticMatchesReals(t *testing.T) {
	tests := []struct {
		name string
		op   func(a, b Dual) Dual
		want float64
	}{
		{"add", Add, 5.5},
		{"sub", Sub, 1.5},
		{"mul", Mul, 7},
	}

	a, b := Constant(3.5), Constant(2)
	for _, tt := range tests {
		got := tt.op(a, b)
		assertClose(t, tt.want, got.Value, tt.name)
		if !got.IsConstant() {
			t.Errorf("%s: constant operands must produce a constant result, got grad %v", tt.name, got.Grad)
		}
	}

	q, err := Div(a, b)
	if err != nil {
		t.Fatalf("div: %v", err)
	}
	assertClose(t, 1.75, q.Value, "div")
	if !q.IsConstant() {
		t.Errorf("div: expected constant result, got grad %v", q.Grad)
	}
}

func TestSeedProductRule(t *testing.T) {
	// x seeded at index k with primal v: mul(x, x) = v² with derivative 2v
	// at k and zero elsewhere.
	const v = 3.0
	const k = ParameterIndex(2)

	x := Seed(v, k)
	y := Mul(x, x)

	assertClose(t, v*v, y.Value, "primal")
	assertClose(t, 2*v, y.Derivative(k), "derivative at seed index")
	assertClose(t, 0, y.Derivative(0), "derivative at other index")
	assertClose(t, 0, y.Derivative(17), "zero-extension past stored width")
}

func TestZeroExtensionAcrossWidths(t *testing.T) {
	// A dual seeded early (short grad) must combine correctly with one
	// seeded after the registry has grown.
	x := Seed(2, 0) // grad width 1
	y := Seed(5, 3) // grad width 4

	sum := Add(x, y)
	assertClose(t, 7, sum.Value, "sum primal")
	assertClose(t, 1, sum.Derivative(0), "d/dx")
	assertClose(t, 1, sum.Derivative(3), "d/dy")

	prod := Mul(x, y)
	assertClose(t, 10, prod.Value, "product primal")
	assertClose(t, 5, prod.Derivative(0), "d/dx = y")
	assertClose(t, 2, prod.Derivative(3), "d/dy = x")
	assertClose(t, 0, prod.Derivative(1), "untouched index")
}

func TestDivQuotientRule(t *testing.T) {
	x := Seed(6, 0)
	y := Seed(2, 1)

	q, err := Div(x, y)
	if err != nil {
		t.Fatalf("div: %v", err)
	}
	assertClose(t, 3, q.Value, "primal")
	assertClose(t, 0.5, q.Derivative(0), "d/dx = 1/y")
	assertClose(t, -1.5, q.Derivative(1), "d/dy = -x/y²")
}

func TestDivisionByZero(t *testing.T) {
	_, err := Div(Seed(1, 0), Constant(0))
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestUnaryChainRule(t *testing.T) {
	const v = 0.7
	x := Seed(v, 0)

	tests := []struct {
		name  string
		f     func(Dual) Dual
		value float64
		deriv float64
	}{
		{"exp", Exp, math.Exp(v), math.Exp(v)},
		{"tanh", Tanh, math.Tanh(v), 1 - math.Tanh(v)*math.Tanh(v)},
		{"sigmoid", Sigmoid, 1 / (1 + math.Exp(-v)), 0}, // deriv filled below
		{"relu", ReLU, v, 1},
	}
	s := 1 / (1 + math.Exp(-v))
	tests[2].deriv = s * (1 - s)

	for _, tt := range tests {
		got := tt.f(x)
		assertClose(t, tt.value, got.Value, tt.name+" primal")
		assertClose(t, tt.deriv, got.Derivative(0), tt.name+" derivative")
	}
}

func TestReLUAtZero(t *testing.T) {
	// Derivative at the non-differentiable point is defined as zero.
	got := ReLU(Seed(0, 0))
	assertClose(t, 0, got.Value, "primal")
	assertClose(t, 0, got.Derivative(0), "derivative at 0")

	neg := ReLU(Seed(-2, 0))
	assertClose(t, 0, neg.Value, "negative primal clamps to 0")
	assertClose(t, 0, neg.Derivative(0), "negative derivative clamps to 0")
}

func TestLeakyReLU(t *testing.T) {
	x := Seed(-4, 0)
	got := LeakyReLU(0.1, x)
	assertClose(t, -0.4, got.Value, "primal")
	assertClose(t, 0.1, got.Derivative(0), "derivative")

	// slope 0 degenerates to ReLU
	zero := LeakyReLU(0, x)
	assertClose(t, 0, zero.Value, "slope 0 primal")
	assertClose(t, 0, zero.Derivative(0), "slope 0 derivative")
}
