package panel

import (
	"fmt"

	"github.com/banshee-data/curvature.report/internal/monitoring"
)

// Control is a value the user can change. Handlers run synchronously, in
// registration order, each time the value changes.
type Control interface {
	CurrentValue() float64
	// SetRange changes the selectable range without touching the value.
	SetRange(min, max float64)
	OnChange(fn func(float64) error)
}

var _ Control = (*Slider)(nil)

// Slider is an in-memory Control. It does not clamp: a value outside the
// range is kept as is, matching a slider whose bounds move under it.
type Slider struct {
	label    string
	value    float64
	min, max float64
	handlers []func(float64) error
}

// NewSlider returns a slider with the given value and range.
func NewSlider(label string, value, min, max float64) *Slider {
	return &Slider{label: label, value: value, min: min, max: max}
}

// Label returns the slider's description.
func (s *Slider) Label() string { return s.label }

// CurrentValue implements Control.
func (s *Slider) CurrentValue() float64 { return s.value }

// Range returns the current bounds.
func (s *Slider) Range() (min, max float64) { return s.min, s.max }

// SetRange implements Control.
func (s *Slider) SetRange(min, max float64) {
	s.min, s.max = min, max
}

// OnChange implements Control.
func (s *Slider) OnChange(fn func(float64) error) {
	s.handlers = append(s.handlers, fn)
}

// SetValue changes the value and notifies the handlers. Setting the current
// value again is a no-op. If a handler fails the previous value is
// restored, later handlers are skipped, and the error is returned.
func (s *Slider) SetValue(v float64) error {
	if v == s.value {
		return nil
	}
	prev := s.value
	s.value = v
	for _, fn := range s.handlers {
		if err := fn(v); err != nil {
			s.value = prev
			monitoring.Logf("panel: %s rejected %g: %v", s.label, v, err)
			return fmt.Errorf("%s: %w", s.label, err)
		}
	}
	return nil
}

// set changes the value without notifying handlers.
func (s *Slider) set(v float64) { s.value = v }
