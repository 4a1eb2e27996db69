package panel

import "github.com/banshee-data/curvature.report/internal/overlay"

// SliderState is a slider's value and bounds.
type SliderState struct {
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

func sliderState(s *Slider) SliderState {
	lo, hi := s.Range()
	return SliderState{Value: s.CurrentValue(), Min: lo, Max: hi}
}

// MarkerSetState describes one marker pool after its last sync.
type MarkerSetState struct {
	Color     string       `json:"color"`
	Positions []float64    `json:"positions"` // visible markers, ascending
	Handles   int          `json:"handles"`   // allocated, visible or hidden
	LastPlan  []overlay.Op `json:"last_plan"`
}

// State is a read-only view of the panel for serialisation.
type State struct {
	Label              string         `json:"label,omitempty"`
	Samples            int            `json:"samples"`
	DomainMin          float64        `json:"domain_min"`
	DomainMax          float64        `json:"domain_max"`
	Sigma              SliderState    `json:"sigma"`
	CurvatureThreshold SliderState    `json:"curvature_threshold"`
	GradientThreshold  SliderState    `json:"gradient_threshold"`
	HighCurvature      MarkerSetState `json:"high_curvature"`
	Inflection         MarkerSetState `json:"inflection"`
}

// State returns a copy of the panel's current state.
func (p *Panel) State() State {
	x, _ := p.model.Samples()
	lo, hi := p.model.Domain()
	return State{
		Label:              p.label,
		Samples:            len(x),
		DomainMin:          lo,
		DomainMax:          hi,
		Sigma:              sliderState(p.sigma),
		CurvatureThreshold: sliderState(p.curvTh),
		GradientThreshold:  sliderState(p.gradTh),
		HighCurvature:      markerSetState(p.hc, p.hcRoots, p.lastHC),
		Inflection:         markerSetState(p.inf, p.infRoots, p.lastInf),
	}
}

func markerSetState(pool *overlay.Pool, roots []float64, plan []overlay.Op) MarkerSetState {
	return MarkerSetState{
		Color:     pool.Style().Color,
		Positions: append([]float64{}, roots...),
		Handles:   pool.Len(),
		LastPlan:  append([]overlay.Op{}, plan...),
	}
}
