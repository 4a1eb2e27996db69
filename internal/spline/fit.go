package spline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MinNotAKnotPoints is the smallest sample count FitNotAKnot accepts.
const MinNotAKnotPoints = 4

// FitNotAKnot fits a cubic interpolant through (xs, ys) with not-a-knot
// boundary conditions: the third derivative is continuous across the first
// and last interior knots, so no endpoint slope has to be assumed.
//
// The result extrapolates its outer pieces. xs must be strictly increasing
// and hold at least MinNotAKnotPoints values.
func FitNotAKnot(xs, ys []float64) (*PiecewisePoly, error) {
	n := len(xs)
	if len(ys) != n {
		return nil, fmt.Errorf("xs and ys differ in length (%d != %d)", n, len(ys))
	}
	if n < MinNotAKnotPoints {
		return nil, fmt.Errorf("need at least %d points for a not-a-knot cubic, got %d", MinNotAKnotPoints, n)
	}
	for i := 1; i < n; i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, fmt.Errorf("xs must be strictly increasing (xs[%d]=%g, xs[%d]=%g)", i-1, xs[i-1], i, xs[i])
		}
	}

	m, err := solveSecondDerivatives(xs, ys)
	if err != nil {
		return nil, err
	}

	coeffs := make([][]float64, n-1)
	for i := 0; i < n-1; i++ {
		dx := xs[i+1] - xs[i]
		dy := ys[i+1] - ys[i]
		dm := m[i+1] - m[i]
		coeffs[i] = []float64{
			ys[i],
			(dy - (m[i]+dm/3)*dx*dx/2) / dx,
			m[i] / 2,
			dm / 6 / dx,
		}
	}
	return &PiecewisePoly{
		breaks:      append([]float64(nil), xs...),
		coeffs:      coeffs,
		extrapolate: true,
	}, nil
}

// solveSecondDerivatives solves the banded system for the knot second
// derivatives. Interior rows make the first derivative continuous; the
// first and last rows equate third derivatives across the outer interior
// knots.
func solveSecondDerivatives(xs, ys []float64) ([]float64, error) {
	n := len(xs)
	a := mat.NewBandDense(n, n, 2, 2, nil)
	b := mat.NewVecDense(n, nil)

	for i := 0; i < n-1; i++ {
		dx := xs[i+1] - xs[i]
		slope := (ys[i+1] - ys[i]) / dx
		if i > 0 {
			b.SetVec(i, b.AtVec(i)+slope)
			a.SetBand(i, i, a.At(i, i)+dx/3)
			a.SetBand(i, i+1, dx/6)
		}
		if i < n-2 {
			b.SetVec(i+1, b.AtVec(i+1)-slope)
			a.SetBand(i+1, i+1, a.At(i+1, i+1)+dx/3)
			a.SetBand(i+1, i, dx/6)
		}
	}

	outer, inner := xs[1]-xs[0], xs[2]-xs[1]
	a.SetBand(0, 0, 1/outer)
	a.SetBand(0, 1, -1/outer-1/inner)
	a.SetBand(0, 2, 1/inner)

	last := n - 1
	outer, inner = xs[last]-xs[last-1], xs[last-1]-xs[last-2]
	a.SetBand(last, last, 1/outer)
	a.SetBand(last, last-1, -1/outer-1/inner)
	a.SetBand(last, last-2, 1/inner)

	var m mat.VecDense
	if err := m.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("solve not-a-knot system: %w", err)
	}
	return append([]float64(nil), m.RawVector().Data...), nil
}
