// Package panel binds the sigma and threshold sliders to a curve model, its
// critical-point selection, and the marker pools drawn on a plot surface.
//
// A panel is single-threaded: every notification runs to completion before
// the next one starts. Embedders that receive changes from several
// goroutines must serialise them.
package panel

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/curvature.report/internal/config"
	"github.com/banshee-data/curvature.report/internal/curve"
	"github.com/banshee-data/curvature.report/internal/monitoring"
	"github.com/banshee-data/curvature.report/internal/overlay"
	"github.com/banshee-data/curvature.report/internal/surface"
)

// Slider labels.
const (
	SigmaLabel              = "sigma"
	GradientThresholdLabel  = "gradient_threshold"
	CurvatureThresholdLabel = "curvature_threshold"
)

// Config holds the panel's startup settings.
type Config struct {
	SigmaMax           float64
	CurvatureThreshold float64
	GradientThreshold  float64
	GridPoints         int
	RangeHeadroom      float64
	HighCurvatureColor string
	InflectionColor    string
	Label              string
}

// ConfigFrom resolves the panel settings from an explorer config, applying
// defaults for unset fields.
func ConfigFrom(c *config.ExplorerConfig) Config {
	return Config{
		SigmaMax:           c.GetSigmaMax(),
		CurvatureThreshold: c.GetCurvatureThreshold(),
		GradientThreshold:  c.GetGradientThreshold(),
		GridPoints:         c.GetGridPoints(),
		RangeHeadroom:      c.GetRangeHeadroom(),
		HighCurvatureColor: c.GetHighCurvatureColor(),
		InflectionColor:    c.GetInflectionColor(),
		Label:              c.GetLabel(),
	}
}

// LineHandles names the data lines the panel keeps up to date.
type LineHandles struct {
	Samples surface.HandleID // raw samples on AxisCurve
	Spline  surface.HandleID // fitted spline on AxisCurve
	Grad    surface.HandleID // |grad| on AxisGrad
	Curv    surface.HandleID // |curv| on AxisCurv
}

// AddStandardLines creates the panel's data lines on a scene.
func AddStandardLines(s *surface.Scene) LineHandles {
	return LineHandles{
		Samples: s.AddPoints(surface.AxisCurve, "samples", surface.Style{Color: "#7F7F7F", Alpha: 0.6, Width: 2}),
		Spline:  s.AddLine(surface.AxisCurve, "spline", surface.Style{Color: "#1F77B4", Alpha: 1, Width: 1.5}),
		Grad:    s.AddLine(surface.AxisGrad, "|grad|", surface.Style{Color: "#1F77B4", Alpha: 1, Width: 1.5}),
		Curv:    s.AddLine(surface.AxisCurv, "|curv|", surface.Style{Color: "#1F77B4", Alpha: 1, Width: 1.5}),
	}
}

// Marker and threshold line styles.
var (
	thresholdStyle = surface.Style{Color: "#000000", Dash: surface.DashDotted, Alpha: 0.7, Width: 1}
	hcBaseStyle    = surface.Style{Dash: surface.DashDashed, Alpha: 0.4, Width: 1}
	ifBaseStyle    = surface.Style{Dash: surface.DashDotted, Alpha: 0.4, Width: 1}
)

// Panel drives a surface from three sliders.
type Panel struct {
	model   *curve.Model
	surface surface.Surface
	lines   LineHandles
	cfg     Config
	label   string

	sigma    *Slider
	gradTh   *Slider
	curvTh   *Slider
	gradLine surface.HandleID
	curvLine surface.HandleID

	hc  *overlay.Pool
	inf *overlay.Pool

	grid     []float64
	lastHC   []overlay.Op
	lastInf  []overlay.Op
	hcRoots  []float64
	infRoots []float64
}

// New builds the sliders, threshold lines and marker pools, draws the
// model's current state, and wires the slider notifications.
func New(model *curve.Model, s surface.Surface, lines LineHandles, cfg Config) *Panel {
	p := &Panel{
		model:   model,
		surface: s,
		lines:   lines,
		cfg:     cfg,
		label:   cfg.Label,
		sigma:   NewSlider(SigmaLabel, model.Sigma(), 0, cfg.SigmaMax),
		gradTh:  NewSlider(GradientThresholdLabel, cfg.GradientThreshold, 0, 0),
		curvTh:  NewSlider(CurvatureThresholdLabel, cfg.CurvatureThreshold, 0, 0),
	}
	p.curvLine = s.CreateHorizontalMarker(surface.AxisCurv, cfg.CurvatureThreshold, thresholdStyle)
	p.gradLine = s.CreateHorizontalMarker(surface.AxisGrad, cfg.GradientThreshold, thresholdStyle)
	p.hc = overlay.NewPool(overlay.HighCurvature, s, surface.AxisCurve, withColor(hcBaseStyle, cfg.HighCurvatureColor))
	p.inf = overlay.NewPool(overlay.Inflection, s, surface.AxisCurve, withColor(ifBaseStyle, cfg.InflectionColor))

	p.redraw()

	p.sigma.OnChange(p.onSigma)
	p.curvTh.OnChange(p.onCurvatureThreshold)
	p.gradTh.OnChange(p.onGradientThreshold)
	return p
}

// SetSigma notifies a sigma change.
func (p *Panel) SetSigma(v float64) error { return p.sigma.SetValue(v) }

// SetCurvatureThreshold notifies a curvature threshold change.
func (p *Panel) SetCurvatureThreshold(v float64) error { return p.curvTh.SetValue(v) }

// SetGradientThreshold notifies a gradient threshold change.
func (p *Panel) SetGradientThreshold(v float64) error { return p.gradTh.SetValue(v) }

// SigmaControl returns the sigma slider.
func (p *Panel) SigmaControl() *Slider { return p.sigma }

// CurvatureControl returns the curvature threshold slider.
func (p *Panel) CurvatureControl() *Slider { return p.curvTh }

// GradientControl returns the gradient threshold slider.
func (p *Panel) GradientControl() *Slider { return p.gradTh }

// Load replaces the sample series, keeping sigma, and redraws everything.
func (p *Panel) Load(x, y []float64) error {
	if err := p.model.Load(x, y); err != nil {
		return err
	}
	p.redraw()
	return nil
}

// Override replaces the samples and sigma together and redraws
// everything. The sigma slider follows without notifying.
func (p *Panel) Override(x, y []float64, sigma float64) error {
	if err := p.model.Override(x, y, sigma); err != nil {
		return err
	}
	p.sigma.set(sigma)
	p.redraw()
	return nil
}

// SetColors restyles both marker sets, hidden markers included.
func (p *Panel) SetColors(highCurvature, inflection string) {
	p.cfg.HighCurvatureColor = highCurvature
	p.cfg.InflectionColor = inflection
	p.hc.Restyle(withColor(hcBaseStyle, highCurvature))
	p.inf.Restyle(withColor(ifBaseStyle, inflection))
}

// Label returns the panel's caption.
func (p *Panel) Label() string { return p.label }

// SetLabel changes the panel's caption.
func (p *Panel) SetLabel(l string) { p.label = l }

func (p *Panel) onSigma(v float64) error {
	if err := p.model.SetSigma(v); err != nil {
		return err
	}
	p.updateFull()
	return nil
}

func (p *Panel) onCurvatureThreshold(v float64) error {
	roots, err := p.model.HighCurvatureRoots(v)
	if err != nil {
		return err
	}
	p.surface.SetMarkerPosition(p.curvLine, v)
	p.hcRoots = roots
	p.lastHC = p.hc.Sync(roots)
	return nil
}

func (p *Panel) onGradientThreshold(v float64) error {
	roots, err := p.model.InflectionRoots(v)
	if err != nil {
		return err
	}
	p.surface.SetMarkerPosition(p.gradLine, v)
	p.infRoots = roots
	p.lastInf = p.inf.Sync(roots)
	return nil
}

// updateFull redraws the derived curves and re-syncs both marker sets at
// the current thresholds.
func (p *Panel) updateFull() {
	p.updateCurves()
	if err := p.onCurvatureThreshold(p.curvTh.CurrentValue()); err != nil {
		monitoring.Logf("panel: curvature markers not updated: %v", err)
	}
	if err := p.onGradientThreshold(p.gradTh.CurrentValue()); err != nil {
		monitoring.Logf("panel: inflection markers not updated: %v", err)
	}
}

// updateCurves pushes the spline, |grad| and |curv| on the display grid and
// rescales the threshold sliders and derivative axes to fit.
func (p *Panel) updateCurves() {
	xs := p.grid
	p.surface.SetLineData(p.lines.Spline, xs, p.model.EvaluateSpline(xs))

	grad := absAll(p.model.EvaluateGrad(xs))
	p.surface.SetLineData(p.lines.Grad, xs, grad)
	p.gradTh.SetRange(0, p.cfg.RangeHeadroom*finiteMax(grad))
	p.surface.RescaleAxisToData(surface.AxisGrad)

	curv := absAll(p.model.EvaluateCurv(xs))
	p.surface.SetLineData(p.lines.Curv, xs, curv)
	p.curvTh.SetRange(0, p.cfg.RangeHeadroom*finiteMax(curv))
	p.surface.RescaleAxisToData(surface.AxisCurv)
}

// drawSamples draws the raw samples and recomputes the display grid over
// their x range.
func (p *Panel) drawSamples() {
	x, y := p.model.Samples()
	p.surface.SetLineData(p.lines.Samples, x, y)
	lo, hi := p.model.Domain()
	n := p.cfg.GridPoints
	if n < 2 {
		n = 2
	}
	p.grid = floats.Span(make([]float64, n), lo, hi)
	monitoring.Logf("panel: drawing %d samples over [%g, %g] on a %d-point grid", len(x), lo, hi, n)
}

// redraw refreshes everything after the samples change. Unlike a sigma
// change it also refits the curve axis.
func (p *Panel) redraw() {
	p.drawSamples()
	p.updateFull()
	p.surface.RescaleAxisToData(surface.AxisCurve)
}

func withColor(s surface.Style, color string) surface.Style {
	s.Color = color
	return s
}

func absAll(v []float64) []float64 {
	for i := range v {
		v[i] = math.Abs(v[i])
	}
	return v
}

// finiteMax returns the largest finite value of v, or 0 if there is none.
func finiteMax(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if !math.IsNaN(x) && !math.IsInf(x, 0) && x > m {
			m = x
		}
	}
	return m
}
