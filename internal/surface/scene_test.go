package surface

import (
	"bytes"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/curvature.report/internal/monitoring"
)

func TestScene_LinesAndData(t *testing.T) {
	s := NewScene("curve")
	spl := s.AddLine(AxisCurve, "spline", Style{Color: "#000000", Width: 1})
	pts := s.AddPoints(AxisCurve, "samples", Style{Color: "#888888"})
	require.NotEqual(t, spl, pts)

	x := []float64{0, 1, 2}
	y := []float64{1, 4, 9}
	s.SetLineData(spl, x, y)
	x[0] = 100

	l, ok := s.Line(spl)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 1, 2}, l.X, "scene must copy line data")
	assert.Equal(t, []float64{1, 4, 9}, l.Y)
	assert.False(t, l.Points)

	p, ok := s.Line(pts)
	require.True(t, ok)
	assert.True(t, p.Points)

	_, ok = s.Line(HandleID(99))
	assert.False(t, ok)
}

func TestScene_Markers(t *testing.T) {
	s := NewScene("curve")
	style := Style{Color: "#0E6089", Dash: DashDashed, Alpha: 0.4}
	v := s.CreateVerticalMarker(AxisGrad, 1.5, style)
	h := s.CreateHorizontalMarker(AxisCurv, 0.3, Style{Dash: DashDotted, Alpha: 0.7})

	m, ok := s.Marker(v)
	require.True(t, ok)
	assert.Equal(t, Vertical, m.Orientation)
	assert.True(t, m.Visible)
	assert.Equal(t, 1.5, m.Position)

	s.SetMarkerPosition(v, 2.5)
	s.SetMarkerVisible(v, false)
	s.SetMarkerStyle(v, Style{Color: "#5E50A3"})
	m, _ = s.Marker(v)
	assert.Equal(t, 2.5, m.Position)
	assert.False(t, m.Visible)
	assert.Equal(t, "#5E50A3", m.Style.Color)

	hm, _ := s.Marker(h)
	assert.Equal(t, Horizontal, hm.Orientation)
	assert.Equal(t, 2, s.MarkerCount())

	snap := s.Snapshot()
	assert.Empty(t, snap.MarkersOn(AxisGrad), "hidden markers are not drawn")
	assert.Len(t, snap.MarkersOn(AxisCurv), 1)
}

func TestScene_UnknownHandleLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := monitoring.Logf
	monitoring.SetLogger(log.New(&buf, "", 0).Printf)
	t.Cleanup(func() { monitoring.SetLogger(prev) })

	s := NewScene("curve")
	s.SetMarkerPosition(HandleID(5), 1)
	s.SetLineData(HandleID(6), nil, nil)

	out := buf.String()
	assert.True(t, strings.Contains(out, "unknown marker handle 5"), out)
	assert.True(t, strings.Contains(out, "unknown line handle 6"), out)
}

func TestScene_RescaleAxisToData(t *testing.T) {
	s := NewScene("curve")
	a := s.AddLine(AxisGrad, "|grad|", Style{})
	b := s.AddLine(AxisGrad, "other", Style{})
	c := s.AddLine(AxisCurv, "|curv|", Style{})

	s.SetLineData(a, []float64{0, 1}, []float64{0, 2})
	s.SetLineData(b, []float64{0, 1}, []float64{math.NaN(), 4})
	s.SetLineData(c, []float64{0, 1}, []float64{100, 100})

	s.RescaleAxisToData(AxisGrad)
	r := s.Range(AxisGrad)
	require.True(t, r.Valid)
	assert.InDelta(t, -0.2, r.Min, 1e-12)
	assert.InDelta(t, 4.2, r.Max, 1e-12)

	// Flat data still gets a non-empty range.
	s.RescaleAxisToData(AxisCurv)
	r = s.Range(AxisCurv)
	require.True(t, r.Valid)
	assert.Less(t, r.Min, 100.0)
	assert.Greater(t, r.Max, 100.0)

	// No finite data keeps the previous range.
	s.SetLineData(a, []float64{0}, []float64{math.Inf(1)})
	s.SetLineData(b, nil, nil)
	s.RescaleAxisToData(AxisGrad)
	assert.InDelta(t, 4.2, s.Range(AxisGrad).Max, 1e-12)

	assert.False(t, s.Range(AxisCurve).Valid)
}

func TestScene_SnapshotOrderedAndDetached(t *testing.T) {
	s := NewScene("title")
	for i := 0; i < 5; i++ {
		h := s.AddLine(Axes[i%len(Axes)], "l", Style{})
		s.SetLineData(h, []float64{float64(i)}, []float64{float64(i)})
		s.CreateVerticalMarker(AxisCurve, float64(i), Style{})
	}

	snap := s.Snapshot()
	assert.Equal(t, "title", snap.Title)
	require.Len(t, snap.Lines, 5)
	require.Len(t, snap.Markers, 5)
	for i := 1; i < 5; i++ {
		assert.Less(t, snap.Lines[i-1].Handle, snap.Lines[i].Handle)
		assert.Less(t, snap.Markers[i-1].Handle, snap.Markers[i].Handle)
	}

	lo, hi, ok := snap.XRange()
	require.True(t, ok)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 4.0, hi)
	assert.Len(t, snap.LinesOn(AxisCurve), 2)

	snap.Lines[0].X[0] = -1
	l, _ := s.Line(snap.Lines[0].Handle)
	assert.Equal(t, 0.0, l.X[0])
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "curve", AxisCurve.String())
	assert.Equal(t, "gradient", AxisGrad.String())
	assert.Equal(t, "curvature", AxisCurv.String())
	assert.Equal(t, "unknown", AxisID(9).String())
	assert.Equal(t, "solid", DashSolid.String())
	assert.Equal(t, "dashed", DashDashed.String())
	assert.Equal(t, "dotted", DashDotted.String())
}
