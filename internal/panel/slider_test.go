package panel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/curvature.report/internal/monitoring"
)

func TestSlider_SetValueNotifies(t *testing.T) {
	t.Parallel()
	s := NewSlider("sigma", 0, 0, 5)

	var seen []float64
	s.OnChange(func(v float64) error { seen = append(seen, v); return nil })
	s.OnChange(func(v float64) error { seen = append(seen, -v); return nil })

	require.NoError(t, s.SetValue(2))
	assert.Equal(t, []float64{2, -2}, seen)
	assert.Equal(t, 2.0, s.CurrentValue())

	// Same value again does not notify.
	require.NoError(t, s.SetValue(2))
	assert.Len(t, seen, 2)
}

func TestSlider_RollbackOnHandlerError(t *testing.T) {
	defer monitoring.Mute()()

	s := NewSlider("sigma", 1, 0, 5)
	boom := errors.New("boom")
	laterCalled := false
	s.OnChange(func(v float64) error {
		if v < 0 {
			return boom
		}
		return nil
	})
	s.OnChange(func(float64) error { laterCalled = true; return nil })

	err := s.SetValue(-1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sigma")
	assert.Equal(t, 1.0, s.CurrentValue())
	assert.False(t, laterCalled)
}

func TestSlider_SetRangeDoesNotClamp(t *testing.T) {
	t.Parallel()
	s := NewSlider("gradient_threshold", 10, 0, 20)
	s.SetRange(0, 3)

	lo, hi := s.Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 3.0, hi)
	assert.Equal(t, 10.0, s.CurrentValue())
	assert.Equal(t, "gradient_threshold", s.Label())
}
