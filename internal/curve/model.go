// Package curve holds the smoothed-curve model: sample data, the smoothing
// parameter, and everything derived from them (spline, derivatives and
// their root sets).
package curve

import (
	"fmt"
	"math"

	"github.com/banshee-data/curvature.report/internal/critical"
	"github.com/banshee-data/curvature.report/internal/smoothing"
	"github.com/banshee-data/curvature.report/internal/spline"
)

// MinSamples is the shortest sample series a model accepts.
const MinSamples = spline.MinNotAKnotPoints

// derived bundles every value that depends on (samples, sigma). It is
// rebuilt as a whole and swapped in only once complete.
type derived struct {
	sigma    float64
	smoothed []float64
	spline   *spline.PiecewisePoly
	grad     *spline.PiecewisePoly
	curv     *spline.PiecewisePoly

	// curvRoots are roots of the third derivative (candidate curvature
	// extrema); gradRoots are roots of curv (candidate inflection points).
	// Both may hold NaN placeholders.
	curvRoots []float64
	gradRoots []float64
}

// Model is a smoothing spline over a sample series. It is not safe for
// concurrent use; callers serialise access.
type Model struct {
	x, y  []float64
	state *derived
}

// NewModel validates the samples and sigma and builds the derived state.
func NewModel(x, y []float64, sigma float64) (*Model, error) {
	m := &Model{}
	if err := m.Override(x, y, sigma); err != nil {
		return nil, err
	}
	return m, nil
}

// Load replaces the sample series and rebuilds the derived state with the
// current sigma. On error the model is unchanged.
func (m *Model) Load(x, y []float64) error {
	sigma := 0.0
	if m.state != nil {
		sigma = m.state.sigma
	}
	return m.Override(x, y, sigma)
}

// Override replaces the samples and sigma together. On error the model is
// unchanged.
func (m *Model) Override(x, y []float64, sigma float64) error {
	if err := validateSamples(x, y); err != nil {
		return err
	}
	if err := validateSigma(sigma); err != nil {
		return err
	}
	xc := append([]float64(nil), x...)
	yc := append([]float64(nil), y...)
	st, err := build(xc, yc, sigma)
	if err != nil {
		return err
	}
	m.x, m.y, m.state = xc, yc, st
	return nil
}

// SetSigma sets the smoothing bandwidth and rebuilds the spline, its
// derivatives and both root sets. A negative or non-finite sigma is
// rejected with ErrInvalidParameter and the previous state is kept.
func (m *Model) SetSigma(s float64) error {
	if err := validateSigma(s); err != nil {
		return err
	}
	st, err := build(m.x, m.y, s)
	if err != nil {
		return err
	}
	m.state = st
	return nil
}

// Sigma returns the current smoothing bandwidth.
func (m *Model) Sigma() float64 { return m.state.sigma }

// Samples returns copies of the raw sample series.
func (m *Model) Samples() (x, y []float64) {
	return append([]float64(nil), m.x...), append([]float64(nil), m.y...)
}

// Smoothed returns a copy of the values the spline interpolates.
func (m *Model) Smoothed() []float64 {
	return append([]float64(nil), m.state.smoothed...)
}

// Domain returns the first and last sample x.
func (m *Model) Domain() (lo, hi float64) {
	return m.x[0], m.x[len(m.x)-1]
}

// EvaluateSpline evaluates the fitted spline at xs.
func (m *Model) EvaluateSpline(xs []float64) []float64 { return m.state.spline.EvalAll(xs) }

// EvaluateGrad evaluates the first derivative at xs.
func (m *Model) EvaluateGrad(xs []float64) []float64 { return m.state.grad.EvalAll(xs) }

// EvaluateCurv evaluates the second derivative at xs.
func (m *Model) EvaluateCurv(xs []float64) []float64 { return m.state.curv.EvalAll(xs) }

// CurvRoots returns a copy of the raw third-derivative root set, NaN
// placeholders included.
func (m *Model) CurvRoots() []float64 { return append([]float64(nil), m.state.curvRoots...) }

// GradRoots returns a copy of the raw root set of curv, NaN placeholders
// included.
func (m *Model) GradRoots() []float64 { return append([]float64(nil), m.state.gradRoots...) }

// HighCurvatureRoots returns the curvature extrema whose |curv| exceeds
// threshold, in ascending x.
func (m *Model) HighCurvatureRoots(threshold float64) ([]float64, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}
	st := m.state
	return critical.Select(st.curvRoots, st.curv.EvalAll, threshold), nil
}

// InflectionRoots returns the zero-curvature points whose |grad| exceeds
// threshold, in ascending x.
func (m *Model) InflectionRoots(threshold float64) ([]float64, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}
	st := m.state
	return critical.Select(st.gradRoots, st.grad.EvalAll, threshold), nil
}

func build(x, y []float64, sigma float64) (*derived, error) {
	smoothed := smoothing.Gaussian1D(y, sigma)
	sp, err := spline.FitNotAKnot(x, smoothed)
	if err != nil {
		return nil, fmt.Errorf("fit spline (sigma=%g): %w", sigma, err)
	}
	grad := sp.Derivative()
	curv := grad.Derivative()
	return &derived{
		sigma:     sigma,
		smoothed:  smoothed,
		spline:    sp,
		grad:      grad,
		curv:      curv,
		curvRoots: sp.DerivativeN(3).Roots(true),
		gradRoots: curv.Roots(true),
	}, nil
}

func validateSamples(x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: x and y differ in length (%d != %d)", ErrInvalidInput, len(x), len(y))
	}
	if len(x) < MinSamples {
		return fmt.Errorf("%w: need at least %d samples, got %d", ErrInvalidInput, MinSamples, len(x))
	}
	for i := range x {
		if !finite(x[i]) || !finite(y[i]) {
			return fmt.Errorf("%w: non-finite sample at index %d (x=%g, y=%g)", ErrInvalidInput, i, x[i], y[i])
		}
		if i > 0 && x[i] <= x[i-1] {
			return fmt.Errorf("%w: x must be strictly increasing (x[%d]=%g, x[%d]=%g)", ErrInvalidInput, i-1, x[i-1], i, x[i])
		}
	}
	return nil
}

func validateSigma(s float64) error {
	if !finite(s) || s < 0 {
		return fmt.Errorf("%w: sigma must be a non-negative finite number, got %g", ErrInvalidParameter, s)
	}
	return nil
}

func validateThreshold(t float64) error {
	if !finite(t) || t < 0 {
		return fmt.Errorf("%w: threshold must be a non-negative finite number, got %g", ErrInvalidParameter, t)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
