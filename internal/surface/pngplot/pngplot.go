// Package pngplot renders a surface snapshot as a PNG of three vertically
// stacked plots sharing the x axis.
package pngplot

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/curvature.report/internal/surface"
)

// Renderer draws snapshots at a fixed size.
type Renderer struct {
	Width, Height vg.Length
}

// New returns a renderer for an image of the given size in inches.
func New(widthInches, heightInches float64) *Renderer {
	return &Renderer{
		Width:  vg.Length(widthInches) * vg.Inch,
		Height: vg.Length(heightInches) * vg.Inch,
	}
}

var axisLabels = map[surface.AxisID]string{
	surface.AxisCurve: "y",
	surface.AxisGrad:  "|dy/dx|",
	surface.AxisCurv:  "|d²y/dx²|",
}

// Plots builds one plot per axis, top to bottom.
func (r *Renderer) Plots(snap surface.Snapshot) ([]*plot.Plot, error) {
	xlo, xhi, ok := snap.XRange()
	if !ok {
		return nil, fmt.Errorf("snapshot has no finite x data")
	}
	if xlo == xhi {
		xlo, xhi = xlo-0.5, xhi+0.5
	}

	plots := make([]*plot.Plot, 0, len(surface.Axes))
	for i, axis := range surface.Axes {
		p := plot.New()
		if i == 0 {
			p.Title.Text = snap.Title
		}
		p.Y.Label.Text = axisLabels[axis]
		if i == len(surface.Axes)-1 {
			p.X.Label.Text = "x"
		}

		for _, l := range snap.LinesOn(axis) {
			if err := addLine(p, l); err != nil {
				return nil, fmt.Errorf("%v axis, line %q: %w", axis, l.Label, err)
			}
		}

		ylo, yhi := yRange(snap, axis)
		for _, m := range snap.MarkersOn(axis) {
			if err := addMarker(p, m, xlo, xhi, ylo, yhi); err != nil {
				return nil, fmt.Errorf("%v axis, marker %d: %w", axis, m.Handle, err)
			}
		}

		p.X.Min, p.X.Max = xlo, xhi
		p.Y.Min, p.Y.Max = ylo, yhi
		p.Legend.Top = true
		p.Legend.Left = false
		p.Legend.XOffs = -10
		p.Legend.YOffs = -10
		plots = append(plots, p)
	}
	return plots, nil
}

// Canvas draws snap onto a new image canvas.
func (r *Renderer) Canvas(snap surface.Snapshot) (*vgimg.Canvas, error) {
	plots, err := r.Plots(snap)
	if err != nil {
		return nil, err
	}
	rows := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		rows[i] = []*plot.Plot{p}
	}

	img := vgimg.New(r.Width, r.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(rows),
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter * 2,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
	}
	canvases := plot.Align(rows, tiles, dc)
	for i := range rows {
		rows[i][0].Draw(canvases[i][0])
	}
	return img, nil
}

// WriterTo renders snap and returns its PNG encoder.
func (r *Renderer) WriterTo(snap surface.Snapshot) (io.WriterTo, error) {
	img, err := r.Canvas(snap)
	if err != nil {
		return nil, err
	}
	return vgimg.PngCanvas{Canvas: img}, nil
}

// Render writes snap to w as PNG.
func (r *Renderer) Render(w io.Writer, snap surface.Snapshot) error {
	wt, err := r.WriterTo(snap)
	if err != nil {
		return err
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func addLine(p *plot.Plot, l surface.Line) error {
	pts := finiteXYs(l.X, l.Y)
	if len(pts) == 0 {
		return nil
	}
	if l.Points {
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = Color(l.Style)
		sc.GlyphStyle.Radius = vg.Points(max(l.Style.Width, 1))
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add(l.Label, sc)
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle = lineStyle(l.Style)
	p.Add(line)
	p.Legend.Add(l.Label, line)
	return nil
}

func addMarker(p *plot.Plot, m surface.Marker, xlo, xhi, ylo, yhi float64) error {
	if m.Orientation == surface.Horizontal {
		f := plotter.NewFunction(func(float64) float64 { return m.Position })
		f.XMin, f.XMax = xlo, xhi
		f.Samples = 2
		f.LineStyle = lineStyle(m.Style)
		p.Add(f)
		return nil
	}
	if m.Position < xlo || m.Position > xhi {
		return nil
	}
	line, err := plotter.NewLine(plotter.XYs{{X: m.Position, Y: ylo}, {X: m.Position, Y: yhi}})
	if err != nil {
		return err
	}
	line.LineStyle = lineStyle(m.Style)
	p.Add(line)
	return nil
}

// yRange returns the rescaled range of axis, or the span of its line data
// when the axis has not been rescaled.
func yRange(snap surface.Snapshot, axis surface.AxisID) (lo, hi float64) {
	if r, ok := snap.Ranges[axis]; ok && r.Valid {
		return r.Min, r.Max
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, l := range snap.LinesOn(axis) {
		for _, v := range l.Y {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if lo > hi {
		return 0, 1
	}
	if lo == hi {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

func finiteXYs(x, y []float64) plotter.XYs {
	n := min(len(x), len(y))
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x[i], Y: y[i]})
	}
	return pts
}

func lineStyle(s surface.Style) draw.LineStyle {
	ls := draw.LineStyle{
		Color: Color(s),
		Width: vg.Points(max(s.Width, 0.5)),
	}
	switch s.Dash {
	case surface.DashDashed:
		ls.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	case surface.DashDotted:
		ls.Dashes = []vg.Length{vg.Points(1), vg.Points(2)}
	}
	return ls
}

// Color converts a style's "#rrggbb" color and alpha to a color.Color. An
// unparseable color is drawn black; alpha 0 is treated as opaque.
func Color(s surface.Style) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s.Color, "#%02x%02x%02x", &r, &g, &b); err != nil {
		r, g, b = 0, 0, 0
	}
	a := s.Alpha
	if a <= 0 || a > 1 {
		a = 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(a * 255))}
}
