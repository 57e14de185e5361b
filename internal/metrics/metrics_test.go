package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/spinsim/internal/spin"
)

func feed(m spin.Metric, sigs ...spin.Signal) {
	for _, s := range sigs {
		m.OnTick(s)
	}
}

func mags(vals ...float64) []spin.Signal {
	out := make([]spin.Signal, len(vals))
	for i, v := range vals {
		out[i] = spin.Signal{Magnetization: v, Smoothed: v, Temperature: 2}
	}
	return out
}

func TestMeanAbsMagnetization(t *testing.T) {
	m := NewMeanAbsMagnetization()
	feed(m, mags(0.5, -0.5, 1, -1)...)
	if got := m.Value(); math.Abs(got-0.75) > 1e-12 {
		t.Errorf("expected 0.75, got %f", got)
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestSusceptibility(t *testing.T) {
	chi := NewSusceptibility(10)
	feed(chi, mags(1, -1, 1, -1)...)
	// Var = 1, T = 2, N = 10.
	if got := chi.Value(); math.Abs(got-5) > 1e-12 {
		t.Errorf("expected 5, got %f", got)
	}

	chi.Reset()
	feed(chi, mags(0.3, 0.3, 0.3)...)
	if got := chi.Value(); math.Abs(got) > 1e-12 {
		t.Errorf("constant magnetization should give zero, got %f", got)
	}
}

func TestBinderCumulant(t *testing.T) {
	tests := []struct {
		name string
		m    []float64
		want float64
	}{
		{"ordered", []float64{1, -1, 1, 1}, 2.0 / 3.0},
		{"two levels", []float64{1, 0}, 1 - 0.5/(3*0.25)},
		{"all zero", []float64{0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBinderCumulant()
			feed(b, mags(tt.m...)...)
			if got := b.Value(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestMeanEnergy(t *testing.T) {
	e := NewMeanEnergy(4)
	feed(e, spin.Signal{Energy: -8}, spin.Signal{Energy: 0})
	if got := e.Value(); got != -1 {
		t.Errorf("expected -1 per node, got %f", got)
	}
}

func TestAcceptanceRate(t *testing.T) {
	a := NewAcceptanceRate()
	if a.Value() != 0 {
		t.Error("expected zero before any trials")
	}
	feed(a, spin.Signal{Trials: 100, Accepted: 30}, spin.Signal{Trials: 100, Accepted: 10})
	if got := a.Value(); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("expected 0.2, got %f", got)
	}
}

func TestOrderedFraction(t *testing.T) {
	o := NewOrderedFraction(0.5)
	feed(o, mags(0.9, -0.6, 0.1, 0.4)...)
	if got := o.Value(); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestStandardNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Standard(10) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %q", m.Name())
		}
		seen[m.Name()] = true
	}
}

func TestMetricsOnLiveSimulator(t *testing.T) {
	cfg := spin.DefaultConfig()
	cfg.NumNodes = 40
	cfg.Seed = 3
	s, err := spin.New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ms := Standard(cfg.NumNodes)
	for _, m := range ms {
		s.Subscribe(m)
	}
	for i := 0; i < 50; i++ {
		s.Tick()
	}
	for _, m := range ms {
		v := m.Value()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s: non-finite value %f", m.Name(), v)
		}
	}
}
