package overlay

import (
	"github.com/banshee-data/curvature.report/internal/surface"
)

// Role tags what a marker set annotates.
type Role int

const (
	// HighCurvature marks curvature extrema above the curvature threshold.
	HighCurvature Role = iota
	// Inflection marks zero-curvature points above the gradient threshold.
	Inflection
)

func (r Role) String() string {
	if r == Inflection {
		return "inflection"
	}
	return "high_curvature"
}

// Pool owns the surface handles for one role. Its length only grows.
type Pool struct {
	role    Role
	axis    surface.AxisID
	style   surface.Style
	surface surface.MarkerSurface
	handles []surface.HandleID
	markers []Marker
}

// NewPool returns an empty pool drawing vertical markers on axis.
func NewPool(role Role, s surface.MarkerSurface, axis surface.AxisID, style surface.Style) *Pool {
	return &Pool{role: role, axis: axis, style: style, surface: s}
}

// Role returns the pool's role.
func (p *Pool) Role() Role { return p.role }

// Len returns the number of handles allocated so far.
func (p *Pool) Len() int { return len(p.handles) }

// Markers returns a copy of the engine-side marker state.
func (p *Pool) Markers() []Marker { return append([]Marker(nil), p.markers...) }

// Handles returns a copy of the surface handles, indexed like Markers.
func (p *Pool) Handles() []surface.HandleID {
	return append([]surface.HandleID(nil), p.handles...)
}

// Visible returns the positions of the visible markers in index order.
func (p *Pool) Visible() []float64 {
	var out []float64
	for _, m := range p.markers {
		if m.Visible {
			out = append(out, m.Position)
		}
	}
	return out
}

// Sync plans the move from the current markers to targets, carries it out
// on the surface, and returns the plan.
func (p *Pool) Sync(targets []float64) []Op {
	plan := Plan(p.markers, targets)
	for _, op := range plan {
		switch op.Kind {
		case OpUpdate:
			h := p.handles[op.Index]
			p.surface.SetMarkerPosition(h, op.Position)
			p.surface.SetMarkerVisible(h, true)
			p.markers[op.Index] = Marker{Position: op.Position, Visible: true}
		case OpCreate:
			h := p.surface.CreateVerticalMarker(p.axis, op.Position, p.style)
			p.surface.SetMarkerVisible(h, true)
			p.handles = append(p.handles, h)
			p.markers = append(p.markers, Marker{Position: op.Position, Visible: true})
		case OpHide:
			p.surface.SetMarkerVisible(p.handles[op.Index], false)
			p.markers[op.Index].Visible = false
		}
	}
	return plan
}

// Restyle applies style to every handle, hidden ones included, and to
// markers created later.
func (p *Pool) Restyle(style surface.Style) {
	p.style = style
	for _, h := range p.handles {
		p.surface.SetMarkerStyle(h, style)
	}
}

// Style returns the style new markers are created with.
func (p *Pool) Style() surface.Style { return p.style }
