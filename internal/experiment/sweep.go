package experiment

import (
	"context"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/san-kum/spinsim/internal/metrics"
)

// Sweep steps the temperature across [TempMin, TempMax] with drift
// disabled, averaging Seeds runs at each point.
type Sweep struct {
	Base     Config
	TempMin  float64
	TempMax  float64
	NumSteps int
	Seeds    int
}

type SweepPoint struct {
	Temperature    float64
	MeanAbsM       float64
	Susceptibility float64
	Binder         float64
	MeanEnergy     float64
	AcceptanceRate float64
}

// Temperatures lists the sweep points in ascending order.
func (s *Sweep) Temperatures() []float64 {
	if s.NumSteps == 1 {
		return []float64{s.TempMin}
	}
	out := make([]float64, s.NumSteps)
	step := (s.TempMax - s.TempMin) / float64(s.NumSteps-1)
	for i := range out {
		out[i] = s.TempMin + float64(i)*step
	}
	return out
}

func (s *Sweep) validate() error {
	switch {
	case s.NumSteps < 1:
		return errors.Errorf("sweep needs at least one step, got %d", s.NumSteps)
	case !(s.TempMin > 0):
		return errors.Errorf("sweep minimum temperature must be positive, got %f", s.TempMin)
	case s.TempMax < s.TempMin:
		return errors.Errorf("sweep range is empty: [%f, %f]", s.TempMin, s.TempMax)
	case s.Seeds < 1:
		return errors.Errorf("sweep needs at least one seed, got %d", s.Seeds)
	}
	return nil
}

// Run executes the sweep, one ensemble per point in ascending temperature.
func (s *Sweep) Run(ctx context.Context) ([]SweepPoint, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	temps := s.Temperatures()
	points := make([]SweepPoint, 0, len(temps))
	for i, t := range temps {
		cfg := s.Base
		cfg.Spin.Temperature = t
		cfg.Spin.DriftStep = 0
		if t < cfg.Spin.TemperatureBounds.Min {
			cfg.Spin.TemperatureBounds.Min = t
		}
		if t > cfg.Spin.TemperatureBounds.Max {
			cfg.Spin.TemperatureBounds.Max = t
		}

		results, err := NewEnsemble(cfg, s.Seeds, s.Base.Spin.Seed, metrics.Standard).Run(ctx)
		if err != nil {
			return points, errors.Wrapf(err, "sweep point T=%.3f", t)
		}
		mean := MeanMetrics(results)
		points = append(points, SweepPoint{
			Temperature:    t,
			MeanAbsM:       mean["mean_abs_magnetization"],
			Susceptibility: mean["susceptibility"],
			Binder:         mean["binder_cumulant"],
			MeanEnergy:     mean["mean_energy"],
			AcceptanceRate: mean["acceptance_rate"],
		})
		klog.V(1).Infof("sweep: point %d/%d T=%.3f |m|=%.3f", i+1, len(temps), t, points[i].MeanAbsM)
	}
	return points, nil
}
