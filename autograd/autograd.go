// Package autograd provides the public API for scalar forward-mode
// automatic differentiation.
//
// A Dual carries a value together with its derivatives with respect to
// every registered parameter. Arithmetic on duals propagates derivatives
// automatically; no tape and no backward pass are involved.
//
// Example:
//
//	reg := autograd.NewRegistry()
//	x := autograd.Seed(3, reg.Allocate())
//	y := autograd.Mul(x, x)
//	_ = y.Derivative(0) // 6
package autograd

import (
	"github.com/simonwuelker/deep-thought/internal/autograd"
)

// ParameterIndex identifies one trainable scalar within a Registry.
type ParameterIndex = autograd.ParameterIndex

// Registry hands out dense parameter indices for one differentiation
// context.
type Registry = autograd.Registry

// Dual is a value plus its derivative vector.
type Dual = autograd.Dual

// ErrDivisionByZero is returned by Div when the divisor primal is zero.
var ErrDivisionByZero = autograd.ErrDivisionByZero

// NewRegistry creates an empty parameter registry.
func NewRegistry() *Registry { return autograd.NewRegistry() }

// Constant creates a dual with no derivatives.
func Constant(v float64) Dual { return autograd.Constant(v) }

// Seed creates a parameter dual: value v with ∂/∂idx = 1.
func Seed(v float64, idx ParameterIndex) Dual { return autograd.Seed(v, idx) }

// Arithmetic. Add, Sub and Mul are total; Div fails on a zero divisor.
func Add(a, b Dual) Dual          { return autograd.Add(a, b) }
func Sub(a, b Dual) Dual          { return autograd.Sub(a, b) }
func Mul(a, b Dual) Dual          { return autograd.Mul(a, b) }
func Div(a, b Dual) (Dual, error) { return autograd.Div(a, b) }

// Scale multiplies value and derivatives by the constant c.
func Scale(c float64, d Dual) Dual { return autograd.Scale(c, d) }

// Neg flips the sign of value and derivatives.
func Neg(d Dual) Dual { return autograd.Neg(d) }

// Unary functions with chain-rule derivatives.
func Exp(d Dual) Dual     { return autograd.Exp(d) }
func Sigmoid(d Dual) Dual { return autograd.Sigmoid(d) }
func Tanh(d Dual) Dual    { return autograd.Tanh(d) }
func ReLU(d Dual) Dual    { return autograd.ReLU(d) }

// LeakyReLU is x for x > 0 and slope·x otherwise.
func LeakyReLU(slope float64, d Dual) Dual { return autograd.LeakyReLU(slope, d) }
