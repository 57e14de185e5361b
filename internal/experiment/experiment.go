package experiment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/san-kum/spinsim/internal/spin"
)

// DefaultFrameInterval is the virtual time between two ticks of a headless
// run, matching a 60 fps host.
const DefaultFrameInterval = time.Second / 60

type Config struct {
	Spin          spin.Config
	Ticks         int
	FrameInterval time.Duration
}

// Result is the outcome of one headless run.
type Result struct {
	Config  spin.Config
	Signals []spin.Signal
	Metrics map[string]float64
	// Elapsed is virtual time, Ticks × FrameInterval.
	Elapsed time.Duration
}

// Magnetization returns the per-tick magnetization series.
func (r *Result) Magnetization() []float64 {
	out := make([]float64, len(r.Signals))
	for i, s := range r.Signals {
		out[i] = s.Magnetization
	}
	return out
}

// Smoothed returns the per-tick smoothed series.
func (r *Result) Smoothed() []float64 {
	out := make([]float64, len(r.Signals))
	for i, s := range r.Signals {
		out[i] = s.Smoothed
	}
	return out
}

type Experiment struct {
	cfg       Config
	simulator *spin.Simulator
	metrics   []spin.Metric
}

func New(cfg Config) *Experiment {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	return &Experiment{cfg: cfg}
}

// Setup builds the simulator on a virtual clock that advances one frame per
// call, and attaches the metrics. Extra options are applied after the clock
// so callers may replace it.
func (e *Experiment) Setup(metrics []spin.Metric, opts ...spin.Option) error {
	clock := VirtualClock(time.Unix(0, 0), e.cfg.FrameInterval)
	all := append([]spin.Option{spin.WithClock(clock)}, opts...)

	s, err := spin.New(e.cfg.Spin, all...)
	if err != nil {
		return err
	}
	e.simulator = s
	e.metrics = metrics
	for _, m := range metrics {
		m.Reset()
		s.Subscribe(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.simulator == nil {
		return nil, errors.New("experiment not set up")
	}
	if e.cfg.Ticks <= 0 {
		return nil, errors.Errorf("ticks must be positive, got %d", e.cfg.Ticks)
	}

	result := &Result{
		Config:  e.simulator.Config(),
		Signals: make([]spin.Signal, 0, e.cfg.Ticks),
		Metrics: make(map[string]float64, len(e.metrics)),
	}

	for i := 0; i < e.cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		result.Signals = append(result.Signals, e.simulator.Tick())
	}
	result.Elapsed = time.Duration(e.cfg.Ticks) * e.cfg.FrameInterval

	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	klog.V(1).Infof("experiment: seed %d ran %d ticks, final m=%.3f", e.cfg.Spin.Seed, e.cfg.Ticks,
		result.Signals[len(result.Signals)-1].Magnetization)
	return result, nil
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *spin.Simulator {
	return e.simulator
}

// VirtualClock returns a clock that starts at start and advances by step on
// every call.
func VirtualClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}
