// Package surface defines the plot-surface capabilities the panel drives and
// an in-memory Scene that implements them. Renderers in the subpackages
// draw a Scene snapshot.
package surface

// HandleID names a line or marker on a surface.
type HandleID int

// AxisID names one of the stacked plot axes.
type AxisID int

const (
	// AxisCurve shows the samples and the fitted spline.
	AxisCurve AxisID = iota
	// AxisGrad shows |first derivative|.
	AxisGrad
	// AxisCurv shows |second derivative|.
	AxisCurv
)

// Axes lists every axis in display order, top to bottom.
var Axes = []AxisID{AxisCurve, AxisGrad, AxisCurv}

func (a AxisID) String() string {
	switch a {
	case AxisCurve:
		return "curve"
	case AxisGrad:
		return "gradient"
	case AxisCurv:
		return "curvature"
	}
	return "unknown"
}

// Dash is a line dash pattern.
type Dash int

const (
	DashSolid Dash = iota
	DashDashed
	DashDotted
)

func (d Dash) String() string {
	switch d {
	case DashDashed:
		return "dashed"
	case DashDotted:
		return "dotted"
	}
	return "solid"
}

// Style is how a line or marker is drawn. Color is "#rrggbb".
type Style struct {
	Color string  `json:"color"`
	Dash  Dash    `json:"dash"`
	Alpha float64 `json:"alpha"`
	Width float64 `json:"width"`
}

// MarkerSurface is the subset of a plot surface that overlay pools need.
type MarkerSurface interface {
	// CreateVerticalMarker adds a visible vertical line at x on axis.
	CreateVerticalMarker(axis AxisID, x float64, style Style) HandleID
	// SetMarkerPosition moves a marker; x for vertical, y for horizontal.
	SetMarkerPosition(h HandleID, pos float64)
	SetMarkerVisible(h HandleID, visible bool)
	SetMarkerStyle(h HandleID, style Style)
}

// Surface is the full plot surface the panel draws on.
type Surface interface {
	MarkerSurface
	// SetLineData replaces the data of an existing line.
	SetLineData(h HandleID, x, y []float64)
	// CreateHorizontalMarker adds a visible horizontal line at y on axis.
	CreateHorizontalMarker(axis AxisID, y float64, style Style) HandleID
	// RescaleAxisToData fits the axis y range to its current line data.
	RescaleAxisToData(axis AxisID)
}
