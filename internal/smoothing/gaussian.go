// Package smoothing implements the Gaussian pre-filter applied to sample
// values before the spline fit.
package smoothing

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultTruncate is the kernel half-width in standard deviations.
const DefaultTruncate = 4.0

const (
	// wideSigma is the kernel width, in reflection periods, from which
	// Kernel folds the weights in closed form instead of offset by offset.
	wideSigma = 16
	// maxDirectRadius caps the offsets Kernel sums one by one.
	maxDirectRadius = 1 << 24
	// maxExactRadius is the largest radius whose integer offsets are exact
	// in float64.
	maxExactRadius = 1 << 52
)

// Kernel returns the normalised Gaussian weights for a series of n samples,
// folded modulo the reflection period 2n: w[c] is the total weight of the
// offsets k in [-r, r] with k ≡ c (mod 2n), where r = floor(truncate*sigma
// + 0.5). The result always has 2n entries, whatever sigma is. sigma <= 0
// yields the identity.
func Kernel(sigma, truncate float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	w := make([]float64, 2*n)
	r := radius(sigma, truncate)
	if !(sigma > 0) || r == 0 {
		w[0] = 1
		return w
	}
	normal := distuv.Normal{Mu: 0, Sigma: sigma}
	wide := wideSigma * float64(len(w))
	if (sigma < wide || r < wide) && r <= maxDirectRadius {
		foldDirect(w, normal, int(r))
	} else {
		foldWide(w, normal, r)
	}
	floats.Scale(1/floats.Sum(w), w)
	return w
}

// radius returns floor(truncate*sigma + 0.5) without converting to int, or
// 0 when that is negative or NaN. The result may be +Inf.
func radius(sigma, truncate float64) float64 {
	r := math.Floor(truncate*sigma + 0.5)
	if !(r > 0) {
		return 0
	}
	return r
}

// foldDirect adds the weight of every offset in [-r, r] to its residue.
func foldDirect(w []float64, normal distuv.Normal, r int) {
	period := len(w)
	for k := -r; k <= r; k++ {
		w[mod(k, period)] += normal.Prob(float64(k))
	}
}

// foldWide fills w, unnormalised, for a kernel at least wideSigma periods
// wide. Over all integers each residue class of such a Gaussian carries
// 1/period of the mass to float64 precision. The tails beyond ±r are then
// taken off class by class.
func foldWide(w []float64, normal distuv.Normal, r float64) {
	period := len(w)
	p := float64(period)
	if r > maxExactRadius {
		for c := range w {
			w[c] = 1 / p
		}
		return
	}
	// tail[c] is the weight of the offsets k > r with k ≡ c.
	tail := make([]float64, period)
	first := int64(r) + 1
	for c := range tail {
		off := (int64(c) - first) % int64(period)
		if off < 0 {
			off += int64(period)
		}
		tail[c] = tailSum(normal, float64(first+off), p)
	}
	for c := range w {
		// Offsets k < -r with k ≡ c mirror the right tail of class -c.
		w[c] = 1/p - tail[c] - tail[(period-c)%period]
	}
}

// tailSum estimates the sum of normal.Prob at a, a+h, a+2h, ... by
// Euler-Maclaurin summation through the h^3 term.
func tailSum(normal distuv.Normal, a, h float64) float64 {
	s2 := normal.Sigma * normal.Sigma
	f := normal.Prob(a)
	u := a / s2
	d1 := -u * f
	d3 := (3*u/s2 - u*u*u) * f
	return normal.Survival(a)/h + f/2 - h*d1/12 + h*h*h*d3/720
}

// Gaussian1D filters ys with a Gaussian of standard deviation sigma,
// truncated at DefaultTruncate standard deviations.
func Gaussian1D(ys []float64, sigma float64) []float64 {
	return Gaussian1DTruncated(ys, sigma, DefaultTruncate)
}

type tap struct {
	offset int
	weight float64
}

// Gaussian1DTruncated filters ys with a truncated Gaussian kernel. Samples
// beyond either end are mirrored about the edge, repeating the edge sample
// (d c b a | a b c d | d c b a). sigma == 0 returns a copy of ys.
func Gaussian1DTruncated(ys []float64, sigma, truncate float64) []float64 {
	out := make([]float64, len(ys))
	if sigma == 0 || len(ys) == 0 {
		copy(out, ys)
		return out
	}
	n := len(ys)
	var taps []tap
	for c, wc := range Kernel(sigma, truncate, n) {
		if wc != 0 {
			taps = append(taps, tap{offset: c, weight: wc})
		}
	}
	for i := range ys {
		sum := 0.0
		for _, t := range taps {
			sum += t.weight * ys[reflect(i+t.offset, n)]
		}
		out[i] = sum
	}
	return out
}

func mod(j, n int) int {
	j %= n
	if j < 0 {
		j += n
	}
	return j
}

// reflect maps an out-of-range index onto [0, n) by half-sample symmetric
// reflection, periodic with period 2n.
func reflect(j, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	j = mod(j, period)
	if j >= n {
		j = period - 1 - j
	}
	return j
}
