package surface

import (
	"math"
	"sort"

	"github.com/banshee-data/curvature.report/internal/monitoring"
)

// Orientation tells vertical markers from horizontal ones.
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

// Line is a data series on one axis.
type Line struct {
	Handle HandleID  `json:"handle"`
	Axis   AxisID    `json:"axis"`
	Label  string    `json:"label"`
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Style  Style     `json:"style"`
	// Points draws the series as unconnected glyphs.
	Points bool `json:"points"`
}

// Marker is a vertical or horizontal reference line.
type Marker struct {
	Handle      HandleID    `json:"handle"`
	Axis        AxisID      `json:"axis"`
	Orientation Orientation `json:"orientation"`
	Position    float64     `json:"position"`
	Visible     bool        `json:"visible"`
	Style       Style       `json:"style"`
}

// AxisRange is a y range set by RescaleAxisToData. Valid is false until the
// axis has been rescaled with finite data.
type AxisRange struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Valid bool    `json:"valid"`
}

// Snapshot is an immutable copy of a Scene, ordered by handle.
type Snapshot struct {
	Title   string               `json:"title"`
	Lines   []Line               `json:"lines"`
	Markers []Marker             `json:"markers"`
	Ranges  map[AxisID]AxisRange `json:"ranges"`
}

// rescaleMargin pads a rescaled axis by this fraction of its data span.
const rescaleMargin = 0.05

// Scene is an in-memory Surface. It records lines, markers and axis ranges
// for renderers and tests. It is not safe for concurrent use.
type Scene struct {
	title   string
	next    HandleID
	lines   map[HandleID]*Line
	markers map[HandleID]*Marker
	ranges  map[AxisID]AxisRange
}

// NewScene returns an empty scene.
func NewScene(title string) *Scene {
	return &Scene{
		title:   title,
		lines:   make(map[HandleID]*Line),
		markers: make(map[HandleID]*Marker),
		ranges:  make(map[AxisID]AxisRange),
	}
}

// AddLine creates an empty line on axis and returns its handle.
func (s *Scene) AddLine(axis AxisID, label string, style Style) HandleID {
	h := s.alloc()
	s.lines[h] = &Line{Handle: h, Axis: axis, Label: label, Style: style}
	return h
}

// AddPoints creates an empty point series on axis and returns its handle.
func (s *Scene) AddPoints(axis AxisID, label string, style Style) HandleID {
	h := s.AddLine(axis, label, style)
	s.lines[h].Points = true
	return h
}

// SetLineData implements Surface.
func (s *Scene) SetLineData(h HandleID, x, y []float64) {
	l, ok := s.lines[h]
	if !ok {
		monitoring.Logf("surface: SetLineData on unknown line handle %d", h)
		return
	}
	l.X = append(l.X[:0], x...)
	l.Y = append(l.Y[:0], y...)
}

// CreateVerticalMarker implements MarkerSurface.
func (s *Scene) CreateVerticalMarker(axis AxisID, x float64, style Style) HandleID {
	return s.addMarker(axis, Vertical, x, style)
}

// CreateHorizontalMarker implements Surface.
func (s *Scene) CreateHorizontalMarker(axis AxisID, y float64, style Style) HandleID {
	return s.addMarker(axis, Horizontal, y, style)
}

// SetMarkerPosition implements MarkerSurface.
func (s *Scene) SetMarkerPosition(h HandleID, pos float64) {
	if m := s.marker(h, "SetMarkerPosition"); m != nil {
		m.Position = pos
	}
}

// SetMarkerVisible implements MarkerSurface.
func (s *Scene) SetMarkerVisible(h HandleID, visible bool) {
	if m := s.marker(h, "SetMarkerVisible"); m != nil {
		m.Visible = visible
	}
}

// SetMarkerStyle implements MarkerSurface.
func (s *Scene) SetMarkerStyle(h HandleID, style Style) {
	if m := s.marker(h, "SetMarkerStyle"); m != nil {
		m.Style = style
	}
}

// RescaleAxisToData implements Surface. The range covers every finite y of
// the axis' lines plus a small margin; an axis without finite data keeps
// its previous range.
func (s *Scene) RescaleAxisToData(axis AxisID) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, l := range s.lines {
		if l.Axis != axis {
			continue
		}
		for _, v := range l.Y {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi {
		return
	}
	pad := (hi - lo) * rescaleMargin
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*rescaleMargin, 0.5)
	}
	s.ranges[axis] = AxisRange{Min: lo - pad, Max: hi + pad, Valid: true}
}

// Range returns the last range computed for axis.
func (s *Scene) Range(axis AxisID) AxisRange { return s.ranges[axis] }

// Marker returns a copy of the marker with handle h.
func (s *Scene) Marker(h HandleID) (Marker, bool) {
	m, ok := s.markers[h]
	if !ok {
		return Marker{}, false
	}
	return *m, true
}

// Line returns a copy of the line with handle h.
func (s *Scene) Line(h HandleID) (Line, bool) {
	l, ok := s.lines[h]
	if !ok {
		return Line{}, false
	}
	return copyLine(*l), true
}

// MarkerCount returns the number of markers ever created, visible or not.
func (s *Scene) MarkerCount() int { return len(s.markers) }

// Snapshot copies the scene for rendering or serialisation.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Title:   s.title,
		Lines:   make([]Line, 0, len(s.lines)),
		Markers: make([]Marker, 0, len(s.markers)),
		Ranges:  make(map[AxisID]AxisRange, len(s.ranges)),
	}
	for _, l := range s.lines {
		snap.Lines = append(snap.Lines, copyLine(*l))
	}
	for _, m := range s.markers {
		snap.Markers = append(snap.Markers, *m)
	}
	for a, r := range s.ranges {
		snap.Ranges[a] = r
	}
	sort.Slice(snap.Lines, func(i, j int) bool { return snap.Lines[i].Handle < snap.Lines[j].Handle })
	sort.Slice(snap.Markers, func(i, j int) bool { return snap.Markers[i].Handle < snap.Markers[j].Handle })
	return snap
}

func (s *Scene) alloc() HandleID {
	h := s.next
	s.next++
	return h
}

func (s *Scene) addMarker(axis AxisID, o Orientation, pos float64, style Style) HandleID {
	h := s.alloc()
	s.markers[h] = &Marker{Handle: h, Axis: axis, Orientation: o, Position: pos, Visible: true, Style: style}
	return h
}

func (s *Scene) marker(h HandleID, op string) *Marker {
	m, ok := s.markers[h]
	if !ok {
		monitoring.Logf("surface: %s on unknown marker handle %d", op, h)
		return nil
	}
	return m
}

func copyLine(l Line) Line {
	l.X = append([]float64(nil), l.X...)
	l.Y = append([]float64(nil), l.Y...)
	return l
}

// LinesOn returns the lines of snap drawn on axis.
func (snap Snapshot) LinesOn(axis AxisID) []Line {
	var out []Line
	for _, l := range snap.Lines {
		if l.Axis == axis {
			out = append(out, l)
		}
	}
	return out
}

// MarkersOn returns the visible markers of snap on axis.
func (snap Snapshot) MarkersOn(axis AxisID) []Marker {
	var out []Marker
	for _, m := range snap.Markers {
		if m.Axis == axis && m.Visible {
			out = append(out, m)
		}
	}
	return out
}

// XRange returns the span of every finite x in snap's lines.
func (snap Snapshot) XRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, l := range snap.Lines {
		for _, v := range l.X {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi, lo <= hi
}
