// Package spline provides piecewise polynomials in a local power basis and
// the not-a-knot cubic interpolant the curve model is built on.
package spline

import (
	"fmt"
	"math"
	"sort"
)

// PiecewisePoly is a piecewise polynomial over strictly increasing
// breakpoints. On piece i, breaks[i] <= x < breaks[i+1] (the last piece also
// includes its right end), the value is
//
//	sum_k coeffs[i][k] * (x - breaks[i])^k
//
// When extrapolate is set the first and last pieces are extended to cover
// the whole real line; otherwise evaluation outside the breakpoints is NaN.
type PiecewisePoly struct {
	breaks      []float64
	coeffs      [][]float64
	extrapolate bool
}

// NewPiecewisePoly copies breaks and coeffs into a new PiecewisePoly.
// Every row of coeffs must have the same, non-zero length.
func NewPiecewisePoly(breaks []float64, coeffs [][]float64, extrapolate bool) (*PiecewisePoly, error) {
	if len(breaks) < 2 {
		return nil, fmt.Errorf("need at least 2 breakpoints, got %d", len(breaks))
	}
	if len(coeffs) != len(breaks)-1 {
		return nil, fmt.Errorf("need %d coefficient rows, got %d", len(breaks)-1, len(coeffs))
	}
	for i := 1; i < len(breaks); i++ {
		if !(breaks[i] > breaks[i-1]) {
			return nil, fmt.Errorf("breakpoints must be strictly increasing (breaks[%d]=%g, breaks[%d]=%g)", i-1, breaks[i-1], i, breaks[i])
		}
	}
	order := len(coeffs[0])
	if order == 0 {
		return nil, fmt.Errorf("coefficient rows must be non-empty")
	}
	rows := make([][]float64, len(coeffs))
	for i, row := range coeffs {
		if len(row) != order {
			return nil, fmt.Errorf("coefficient row %d has length %d, want %d", i, len(row), order)
		}
		rows[i] = append([]float64(nil), row...)
	}
	return &PiecewisePoly{
		breaks:      append([]float64(nil), breaks...),
		coeffs:      rows,
		extrapolate: extrapolate,
	}, nil
}

// Breaks returns a copy of the breakpoints.
func (p *PiecewisePoly) Breaks() []float64 {
	return append([]float64(nil), p.breaks...)
}

// Coeffs returns a copy of the coefficients of piece i, lowest power first.
func (p *PiecewisePoly) Coeffs(i int) []float64 {
	return append([]float64(nil), p.coeffs[i]...)
}

// Pieces returns the number of polynomial pieces.
func (p *PiecewisePoly) Pieces() int { return len(p.coeffs) }

// Order returns the number of coefficients per piece (degree + 1).
func (p *PiecewisePoly) Order() int { return len(p.coeffs[0]) }

// Extrapolate reports whether the outer pieces extend past the breakpoints.
func (p *PiecewisePoly) Extrapolate() bool { return p.extrapolate }

// Eval returns the value at x.
func (p *PiecewisePoly) Eval(x float64) float64 {
	i, ok := p.segment(x)
	if !ok {
		return math.NaN()
	}
	return evalPoly(p.coeffs[i], x-p.breaks[i])
}

// EvalAll evaluates the polynomial at every element of xs.
func (p *PiecewisePoly) EvalAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = p.Eval(x)
	}
	return out
}

// Derivative returns the first derivative as a new PiecewisePoly. The
// derivative of a piecewise constant is identically zero.
func (p *PiecewisePoly) Derivative() *PiecewisePoly {
	order := p.Order() - 1
	if order < 1 {
		order = 1
	}
	rows := make([][]float64, len(p.coeffs))
	for i, c := range p.coeffs {
		d := make([]float64, order)
		for k := 1; k < len(c); k++ {
			d[k-1] = float64(k) * c[k]
		}
		rows[i] = d
	}
	return &PiecewisePoly{
		breaks:      append([]float64(nil), p.breaks...),
		coeffs:      rows,
		extrapolate: p.extrapolate,
	}
}

// DerivativeN returns the n-th derivative. n == 0 returns p itself.
func (p *PiecewisePoly) DerivativeN(n int) *PiecewisePoly {
	d := p
	for ; n > 0; n-- {
		d = d.Derivative()
	}
	return d
}

// segment finds the piece containing x. Points outside the breakpoints map
// to the outer pieces when extrapolating and are rejected otherwise.
func (p *PiecewisePoly) segment(x float64) (int, bool) {
	if math.IsNaN(x) {
		return 0, false
	}
	last := len(p.breaks) - 1
	if x < p.breaks[0] || x > p.breaks[last] {
		if !p.extrapolate {
			return 0, false
		}
		if x < p.breaks[0] {
			return 0, true
		}
		return len(p.coeffs) - 1, true
	}
	i := sort.SearchFloat64s(p.breaks, x)
	if i == len(p.breaks) || p.breaks[i] != x {
		i--
	}
	if i >= len(p.coeffs) {
		i = len(p.coeffs) - 1
	}
	return i, true
}

// evalPoly evaluates sum_k c[k]*t^k with Horner's rule.
func evalPoly(c []float64, t float64) float64 {
	v := 0.0
	for k := len(c) - 1; k >= 0; k-- {
		v = v*t + c[k]
	}
	return v
}

// evalPolyDeriv evaluates the first derivative of sum_k c[k]*t^k.
func evalPolyDeriv(c []float64, t float64) float64 {
	v := 0.0
	for k := len(c) - 1; k >= 1; k-- {
		v = v*t + float64(k)*c[k]
	}
	return v
}
