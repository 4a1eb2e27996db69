// Package echart renders a surface snapshot as an interactive HTML page
// with one go-echarts line chart per axis.
package echart

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/curvature.report/internal/surface"
)

// DefaultAssetsHost serves the echarts JavaScript.
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// Options controls page layout.
type Options struct {
	Width      string // per chart, CSS units
	Height     string // per chart, CSS units
	AssetsHost string
}

// DefaultOptions returns full-width charts that stack on one screen.
func DefaultOptions() Options {
	return Options{Width: "100%", Height: "300px", AssetsHost: DefaultAssetsHost}
}

var axisNames = map[surface.AxisID]string{
	surface.AxisCurve: "y",
	surface.AxisGrad:  "|dy/dx|",
	surface.AxisCurv:  "|d²y/dx²|",
}

// Charts builds one line chart per axis, top to bottom.
func Charts(snap surface.Snapshot, o Options) []*charts.Line {
	xlo, xhi, ok := snap.XRange()
	out := make([]*charts.Line, 0, len(surface.Axes))
	for i, axis := range surface.Axes {
		line := charts.NewLine()

		title := ""
		if i == 0 {
			title = snap.Title
		}
		xAxis := opts.XAxis{Type: "value", Name: "x"}
		if ok {
			xAxis.Min, xAxis.Max = xlo, xhi
		}
		yAxis := opts.YAxis{Type: "value", Name: axisNames[axis], Scale: opts.Bool(true)}
		if r, ok := snap.Ranges[axis]; ok && r.Valid {
			yAxis.Min, yAxis.Max = r.Min, r.Max
		}
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: snap.Title, Width: o.Width, Height: o.Height, AssetsHost: o.AssetsHost}),
			charts.WithTitleOpts(opts.Title{Title: title, Subtitle: axis.String()}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Left: "right"}),
			charts.WithXAxisOpts(xAxis),
			charts.WithYAxisOpts(yAxis),
		)

		for _, l := range snap.LinesOn(axis) {
			addLine(line, l)
		}
		for _, g := range groupMarkers(snap.MarkersOn(axis)) {
			addMarkerGroup(line, g)
		}
		out = append(out, line)
	}
	return out
}

// Page puts the per-axis charts on one page.
func Page(snap surface.Snapshot, o Options) *components.Page {
	page := components.NewPage()
	page.SetPageTitle(snap.Title)
	page.SetAssetsHost(o.AssetsHost)
	for _, c := range Charts(snap, o) {
		page.AddCharts(c)
	}
	return page
}

// Render writes snap to w as an HTML page.
func Render(w io.Writer, snap surface.Snapshot, o Options) error {
	var buf bytes.Buffer
	if err := Page(snap, o).Render(&buf); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriterTo returns snap rendered as an io.WriterTo.
func WriterTo(snap surface.Snapshot, o Options) (io.WriterTo, error) {
	var buf bytes.Buffer
	if err := Render(&buf, snap, o); err != nil {
		return nil, err
	}
	return &buf, nil
}

func addLine(c *charts.Line, l surface.Line) {
	n := min(len(l.X), len(l.Y))
	data := make([]opts.LineData, 0, n)
	for i := 0; i < n; i++ {
		if !finite(l.X[i]) || !finite(l.Y[i]) {
			continue
		}
		data = append(data, opts.LineData{Value: []interface{}{l.X[i], l.Y[i]}})
	}

	style := lineStyle(l.Style)
	chartOpts := opts.LineChart{ShowSymbol: opts.Bool(false)}
	if l.Points {
		chartOpts = opts.LineChart{ShowSymbol: opts.Bool(true), Symbol: "circle", SymbolSize: 5}
		style.Opacity = opts.Float(0)
	}
	c.AddSeries(l.Label, data,
		charts.WithLineChartOpts(chartOpts),
		charts.WithLineStyleOpts(style),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: l.Style.Color}),
	)
}

// markerGroup is a set of markers drawn with one style.
type markerGroup struct {
	name        string
	orientation surface.Orientation
	style       surface.Style
	positions   []float64
}

// groupMarkers batches markers that share orientation and style, keeping
// first-seen order.
func groupMarkers(markers []surface.Marker) []*markerGroup {
	type key struct {
		o surface.Orientation
		s surface.Style
	}
	var groups []*markerGroup
	index := make(map[key]*markerGroup)
	for _, m := range markers {
		k := key{m.Orientation, m.Style}
		g, ok := index[k]
		if !ok {
			name := "threshold"
			if m.Orientation == surface.Vertical {
				name = "markers " + m.Style.Color
			}
			g = &markerGroup{name: name, orientation: m.Orientation, style: m.Style}
			index[k] = g
			groups = append(groups, g)
		}
		g.positions = append(g.positions, m.Position)
	}
	return groups
}

// addMarkerGroup attaches a group as mark lines on an empty carrier series.
func addMarkerGroup(c *charts.Line, g *markerGroup) {
	ls := lineStyle(g.style)
	markStyle := charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
		Symbol:    []string{"none", "none"},
		LineStyle: &ls,
		Label:     &opts.Label{Show: opts.Bool(false)},
	})

	var items charts.SeriesOpts
	if g.orientation == surface.Vertical {
		xs := make([]opts.MarkLineNameXAxisItem, 0, len(g.positions))
		for _, p := range g.positions {
			xs = append(xs, opts.MarkLineNameXAxisItem{Name: fmt.Sprintf("x=%.4g", p), XAxis: p})
		}
		items = charts.WithMarkLineNameXAxisItemOpts(xs...)
	} else {
		ys := make([]opts.MarkLineNameYAxisItem, 0, len(g.positions))
		for _, p := range g.positions {
			ys = append(ys, opts.MarkLineNameYAxisItem{Name: fmt.Sprintf("y=%.4g", p), YAxis: p})
		}
		items = charts.WithMarkLineNameYAxisItemOpts(ys...)
	}
	c.AddSeries(g.name, []opts.LineData{}, items, markStyle)
}

func lineStyle(s surface.Style) opts.LineStyle {
	ls := opts.LineStyle{
		Color: s.Color,
		Width: float32(max(s.Width, 1)),
		Type:  "solid",
	}
	switch s.Dash {
	case surface.DashDashed:
		ls.Type = "dashed"
	case surface.DashDotted:
		ls.Type = "dotted"
	}
	if s.Alpha > 0 && s.Alpha < 1 {
		ls.Opacity = opts.Float(float32(s.Alpha))
	}
	return ls
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
