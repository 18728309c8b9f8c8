// Package autograd implements forward-mode automatic differentiation with
// dual numbers.
//
// A Dual carries a primal value together with the vector of its partial
// derivatives with respect to every registered parameter. Derivatives are
// propagated alongside the primal during the forward evaluation of an
// expression; there is no separate backward pass.
package autograd

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrDivisionByZero is returned when a divisor's primal value is exactly zero.
var ErrDivisionByZero = errors.New("division by zero")

// Dual is a scalar augmented with a derivative vector indexed by parameter.
//
// Grad[i] equals ∂Value/∂paramᵢ. The vector is conceptually infinite and
// zero-extended: a nil or short Grad means the derivatives for all missing
// trailing indices are zero. This keeps duals created early in network
// construction valid as the parameter registry keeps growing.
type Dual struct {
	Value float64
	Grad  []float64
}

// Constant creates a dual number with an all-zero derivative vector.
func Constant(v float64) Dual {
	return Dual{Value: v}
}

// Seed creates the dual number for parameter k: its derivative vector is
// zero everywhere except 1 at index k. Every parameter must be seeded with
// a unique index obtained from a Registry.
func Seed(v float64, k ParameterIndex) Dual {
	g := make([]float64, int(k)+1)
	g[k] = 1
	return Dual{Value: v, Grad: g}
}

// IsConstant reports whether the dual carries no derivatives.
func (d Dual) IsConstant() bool {
	for _, g := range d.Grad {
		if g != 0 {
			return false
		}
	}
	return true
}

// Derivative returns ∂Value/∂paramₖ, applying zero-extension for indices
// beyond the stored vector.
func (d Dual) Derivative(k ParameterIndex) float64 {
	if int(k) >= len(d.Grad) {
		return 0
	}
	return d.Grad[k]
}

// String formats the dual as value plus its stored derivative prefix.
func (d Dual) String() string {
	return fmt.Sprintf("Dual(%v, %v)", d.Value, d.Grad)
}

// gradWidth returns the length of the longer of two derivative vectors.
func gradWidth(a, b Dual) int {
	if len(a.Grad) > len(b.Grad) {
		return len(a.Grad)
	}
	return len(b.Grad)
}

// Add returns a + b. Derivative vectors are summed, zero-extended to the
// longer length.
func Add(a, b Dual) Dual {
	w := gradWidth(a, b)
	if w == 0 {
		return Dual{Value: a.Value + b.Value}
	}
	g := make([]float64, w)
	copy(g, a.Grad)
	if len(b.Grad) > 0 {
		floats.Add(g[:len(b.Grad)], b.Grad)
	}
	return Dual{Value: a.Value + b.Value, Grad: g}
}

// Sub returns a − b.
func Sub(a, b Dual) Dual {
	w := gradWidth(a, b)
	if w == 0 {
		return Dual{Value: a.Value - b.Value}
	}
	g := make([]float64, w)
	copy(g, a.Grad)
	if len(b.Grad) > 0 {
		floats.AddScaled(g[:len(b.Grad)], -1, b.Grad)
	}
	return Dual{Value: a.Value - b.Value, Grad: g}
}

// Mul returns a × b using the product rule:
// grad = a.Grad×b.Value + b.Grad×a.Value.
func Mul(a, b Dual) Dual {
	w := gradWidth(a, b)
	if w == 0 {
		return Dual{Value: a.Value * b.Value}
	}
	g := make([]float64, w)
	if len(a.Grad) > 0 {
		floats.AddScaled(g[:len(a.Grad)], b.Value, a.Grad)
	}
	if len(b.Grad) > 0 {
		floats.AddScaled(g[:len(b.Grad)], a.Value, b.Grad)
	}
	return Dual{Value: a.Value * b.Value, Grad: g}
}

// Div returns a / b using the quotient rule:
// grad = (a.Grad×b.Value − b.Grad×a.Value) / b.Value².
// It fails with ErrDivisionByZero when b's primal is exactly zero, never
// silently producing NaN or Inf derivatives.
func Div(a, b Dual) (Dual, error) {
	if b.Value == 0 {
		return Dual{}, fmt.Errorf("%v / %v: %w", a.Value, b.Value, ErrDivisionByZero)
	}
	w := gradWidth(a, b)
	if w == 0 {
		return Dual{Value: a.Value / b.Value}, nil
	}
	inv := 1 / (b.Value * b.Value)
	g := make([]float64, w)
	if len(a.Grad) > 0 {
		floats.AddScaled(g[:len(a.Grad)], b.Value*inv, a.Grad)
	}
	if len(b.Grad) > 0 {
		floats.AddScaled(g[:len(b.Grad)], -a.Value*inv, b.Grad)
	}
	return Dual{Value: a.Value / b.Value, Grad: g}, nil
}

// Neg returns −a.
func Neg(a Dual) Dual {
	if len(a.Grad) == 0 {
		return Dual{Value: -a.Value}
	}
	g := make([]float64, len(a.Grad))
	floats.ScaleTo(g, -1, a.Grad)
	return Dual{Value: -a.Value, Grad: g}
}

// Scale returns c × a for a plain scalar c.
func Scale(c float64, a Dual) Dual {
	if len(a.Grad) == 0 {
		return Dual{Value: c * a.Value}
	}
	g := make([]float64, len(a.Grad))
	floats.ScaleTo(g, c, a.Grad)
	return Dual{Value: c * a.Value, Grad: g}
}

// unary applies the chain rule for f(x): primal = v, grad = dv × x.Grad.
func unary(x Dual, v, dv float64) Dual {
	if len(x.Grad) == 0 {
		return Dual{Value: v}
	}
	g := make([]float64, len(x.Grad))
	floats.ScaleTo(g, dv, x.Grad)
	return Dual{Value: v, Grad: g}
}

// Exp returns eˣ.
func Exp(x Dual) Dual {
	v := math.Exp(x.Value)
	return unary(x, v, v)
}

// Sigmoid returns 1 / (1 + e⁻ˣ).
func Sigmoid(x Dual) Dual {
	v := 1 / (1 + math.Exp(-x.Value))
	return unary(x, v, v*(1-v))
}

// Tanh returns the hyperbolic tangent of x.
func Tanh(x Dual) Dual {
	v := math.Tanh(x.Value)
	return unary(x, v, 1-v*v)
}

// ReLU returns max(0, x). The derivative at exactly zero is defined to be
// zero; this is a policy choice, not a numerical accident.
func ReLU(x Dual) Dual {
	if x.Value > 0 {
		return unary(x, x.Value, 1)
	}
	return unary(x, 0, 0)
}

// LeakyReLU returns x for positive inputs and slope×x otherwise.
// LeakyReLU(0, x) is equivalent to ReLU(x).
func LeakyReLU(slope float64, x Dual) Dual {
	if x.Value > 0 {
		return unary(x, x.Value, 1)
	}
	return unary(x, slope*x.Value, slope)
}
