package spin

import (
	"math"
	"time"
)

// drift random-walks temperature and field once the fluctuation interval
// has elapsed since the previous drift. It reports whether it fired.
func (s *Simulator) drift(now time.Time) bool {
	if now.Sub(s.lastDrift) <= s.cfg.FluctuationInterval {
		return false
	}
	s.lastDrift = now
	s.temperature = s.cfg.TemperatureBounds.Clamp(s.temperature + (s.rng.Float64()-0.5)*s.cfg.DriftStep)
	s.field = s.cfg.FieldBounds.Clamp(s.field + (s.rng.Float64()-0.5)*s.cfg.DriftStep)
	return true
}

// SetTemperature overrides the current temperature, clamped to its bounds.
func (s *Simulator) SetTemperature(t float64) {
	if math.IsNaN(t) {
		return
	}
	s.temperature = s.cfg.TemperatureBounds.Clamp(t)
}

// SetField overrides the current field, clamped to its bounds.
func (s *Simulator) SetField(h float64) {
	if math.IsNaN(h) {
		return
	}
	s.field = s.cfg.FieldBounds.Clamp(h)
}
