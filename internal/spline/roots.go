package spline

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Roots returns the real roots of the piecewise polynomial in ascending
// order, piece by piece.
//
// A piece that is identically zero contributes its left breakpoint followed
// by NaN. Callers that need a flat list of points must drop the NaNs.
//
// With discontinuity set, a strict sign change between the left limit and
// the right value at an interior breakpoint is reported as a root at that
// breakpoint. A root equal to the previously reported one is not repeated,
// so a root exactly on a breakpoint shared by two pieces appears once.
//
// When the polynomial extrapolates, roots of the first and last pieces
// beyond the breakpoints are included.
func (p *PiecewisePoly) Roots(discontinuity bool) []float64 {
	var (
		roots   []float64
		last    float64
		hasLast bool
	)
	push := func(r float64) {
		if hasLast && r == last {
			return
		}
		roots = append(roots, r)
		last, hasLast = r, true
	}

	n := len(p.coeffs)
	for i, c := range p.coeffs {
		h := p.breaks[i+1] - p.breaks[i]

		if i > 0 && discontinuity {
			va := evalPoly(p.coeffs[i-1], p.breaks[i]-p.breaks[i-1])
			vb := c[0]
			if (va < 0 && vb > 0) || (va > 0 && vb < 0) {
				push(p.breaks[i])
			}
		}

		local, zero := polyRealRoots(c)
		if zero {
			roots = append(roots, p.breaks[i], math.NaN())
			hasLast = false
			continue
		}

		lo, hi := 0.0, h
		if p.extrapolate && i == 0 {
			lo = math.Inf(-1)
		}
		if p.extrapolate && i == n-1 {
			hi = math.Inf(1)
		}

		found := local[:0]
		for _, s := range local {
			// One Newton step to polish the eigenvalue estimate.
			if v := evalPoly(c, s); v != 0 {
				if dv := evalPolyDeriv(c, s); dv != 0 {
					s -= v / dv
				}
			}
			switch {
			case s == h:
				found = append(found, p.breaks[i+1])
			case s >= lo && s <= hi:
				found = append(found, s+p.breaks[i])
			}
		}
		sort.Float64s(found)
		for _, r := range found {
			push(r)
		}
	}
	return roots
}

// polyRealRoots returns the real roots of sum_k c[k]*t^k. zero reports a
// polynomial whose coefficients are all zero.
func polyRealRoots(c []float64) (roots []float64, zero bool) {
	deg := len(c) - 1
	for deg >= 0 && c[deg] == 0 {
		deg--
	}
	switch deg {
	case -1:
		return nil, true
	case 0:
		return nil, false
	case 1:
		return []float64{-c[0] / c[1]}, false
	case 2:
		return quadraticRoots(c[0], c[1], c[2]), false
	}
	return companionRoots(c[:deg+1]), false
}

// quadraticRoots solves a*t^2 + b*t + c0 = 0 for a != 0, avoiding
// cancellation in the smaller root.
func quadraticRoots(c0, b, a float64) []float64 {
	disc := b*b - 4*a*c0
	switch {
	case disc < 0:
		return nil
	case disc == 0:
		r := -b / (2 * a)
		return []float64{r, r}
	}
	q := -0.5 * (b + math.Copysign(math.Sqrt(disc), b))
	return []float64{q / a, c0 / q}
}

// realRootTol is the largest imaginary part, relative to the real part,
// of an eigenvalue still taken as a real root.
const realRootTol = 1e-6

// companionRoots returns the real eigenvalues of the companion matrix of
// the polynomial with coefficients c (lowest power first, c[len(c)-1] != 0).
func companionRoots(c []float64) []float64 {
	deg := len(c) - 1
	lead := c[deg]
	a := mat.NewDense(deg, deg, nil)
	for i := 1; i < deg; i++ {
		a.Set(i, i-1, 1)
	}
	for i := 0; i < deg; i++ {
		a.Set(i, deg-1, -c[i]/lead)
	}
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil
	}
	var roots []float64
	for _, v := range eig.Values(nil) {
		re, im := real(v), imag(v)
		// A repeated real root can come back as a conjugate pair with a
		// tiny imaginary part; keep one root per such pair.
		if im < 0 || im > realRootTol*math.Max(1, math.Abs(re)) {
			continue
		}
		roots = append(roots, re)
	}
	return roots
}
