package samples

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Synthetic describes a noisy test signal: two sines on [0, Span] with
// Gaussian noise of standard deviation Noise.
type Synthetic struct {
	N     int
	Span  float64
	Noise float64
	Seed  uint64
}

// DefaultSynthetic returns a 60-point signal with mild noise.
func DefaultSynthetic() Synthetic {
	return Synthetic{N: 60, Span: 4 * math.Pi, Noise: 0.15, Seed: 1}
}

// Series generates the samples. The same Seed always yields the same series.
func (s Synthetic) Series() (Series, error) {
	if s.N < 3 {
		return Series{}, fmt.Errorf("synthetic series needs at least 3 points, got %d", s.N)
	}
	if !(s.Span > 0) || math.IsInf(s.Span, 0) {
		return Series{}, fmt.Errorf("synthetic span must be positive, got %g", s.Span)
	}
	if !(s.Noise >= 0) || math.IsInf(s.Noise, 0) {
		return Series{}, fmt.Errorf("synthetic noise must be non-negative, got %g", s.Noise)
	}

	x := floats.Span(make([]float64, s.N), 0, s.Span)
	y := make([]float64, s.N)
	noise := distuv.Normal{Mu: 0, Sigma: s.Noise, Src: rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15)}
	for i, xi := range x {
		y[i] = math.Sin(xi) + 0.3*math.Sin(3.1*xi)
		if s.Noise > 0 {
			y[i] += noise.Rand()
		}
	}
	return Series{X: x, Y: y}, nil
}
