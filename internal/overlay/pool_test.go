package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/curvature.report/internal/surface"
)

var hcStyle = surface.Style{Color: "#0E6089", Dash: surface.DashDashed, Alpha: 0.4, Width: 1}

func TestPool_SyncDrivesSurface(t *testing.T) {
	t.Parallel()
	scene := surface.NewScene("test")
	pool := NewPool(HighCurvature, scene, surface.AxisCurve, hcStyle)

	pool.Sync([]float64{1, 2, 3})
	require.Equal(t, 3, pool.Len())
	assert.Equal(t, 3, scene.MarkerCount())
	assert.Equal(t, []float64{1, 2, 3}, pool.Visible())

	for i, h := range pool.Handles() {
		m, ok := scene.Marker(h)
		require.True(t, ok)
		assert.Equal(t, surface.AxisCurve, m.Axis)
		assert.Equal(t, surface.Vertical, m.Orientation)
		assert.Equal(t, float64(i+1), m.Position)
		assert.True(t, m.Visible)
		assert.Equal(t, hcStyle, m.Style)
	}

	plan := pool.Sync([]float64{2.5})
	assert.Equal(t, []Op{
		{Kind: OpUpdate, Index: 0, Position: 2.5},
		{Kind: OpHide, Index: 1},
		{Kind: OpHide, Index: 2},
	}, plan)
	assert.Equal(t, 3, scene.MarkerCount(), "hidden markers keep their handles")
	assert.Len(t, scene.Snapshot().MarkersOn(surface.AxisCurve), 1)

	handles := pool.Handles()
	first, _ := scene.Marker(handles[0])
	assert.Equal(t, 2.5, first.Position)
	third, _ := scene.Marker(handles[2])
	assert.False(t, third.Visible)
}

func TestPool_HandleCountBoundedByPeak(t *testing.T) {
	t.Parallel()
	scene := surface.NewScene("test")
	pool := NewPool(Inflection, scene, surface.AxisCurve, hcStyle)

	sizes := []int{2, 0, 4, 1, 3, 4, 0, 2}
	for _, n := range sizes {
		targets := make([]float64, n)
		for i := range targets {
			targets[i] = float64(i) + 0.5
		}
		pool.Sync(targets)
		visible := pool.Visible()
		require.Len(t, visible, n)
		for i, x := range targets {
			assert.Equal(t, x, visible[i])
		}
		assert.Equal(t, n, VisibleCount(pool.Markers()))
	}
	assert.Equal(t, 4, pool.Len())
	assert.Equal(t, 4, scene.MarkerCount())
}

func TestPool_Restyle(t *testing.T) {
	t.Parallel()
	scene := surface.NewScene("test")
	pool := NewPool(Inflection, scene, surface.AxisCurve, hcStyle)
	pool.Sync([]float64{1, 2})
	pool.Sync([]float64{1})

	restyled := hcStyle
	restyled.Color = "#FF0000"
	pool.Restyle(restyled)
	assert.Equal(t, restyled, pool.Style())

	for _, h := range pool.Handles() {
		m, _ := scene.Marker(h)
		assert.Equal(t, "#FF0000", m.Style.Color, "hidden markers are restyled too")
	}

	pool.Sync([]float64{1, 2, 3})
	m, _ := scene.Marker(pool.Handles()[2])
	assert.Equal(t, "#FF0000", m.Style.Color, "new markers use the current style")
}

func TestRole_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "high_curvature", HighCurvature.String())
	assert.Equal(t, "inflection", Inflection.String())
	assert.Equal(t, Inflection, NewPool(Inflection, surface.NewScene(""), surface.AxisCurve, hcStyle).Role())
}
