package spin

import (
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
	"github.com/san-kum/spinsim/internal/topology"
)

type Simulator struct {
	cfg       Config
	graph     *topology.Graph
	positions []topology.Vec3
	spins     []Spin
	rng       Rand
	clock     func() time.Time

	temperature float64
	field       float64
	lastDrift   time.Time

	history  *History
	smoother Smoother
	ticks    uint64

	observers []subscription
	nextSubID int
}

type subscription struct {
	id int
	o  Observer
}

type options struct {
	rng       Rand
	clock     func() time.Time
	positions []topology.Vec3
	spins     []Spin
}

type Option func(*options)

// WithRand replaces the seeded PCG source built from Config.Seed.
func WithRand(r Rand) Option { return func(o *options) { o.rng = r } }

// WithClock replaces time.Now for drift timing.
func WithClock(now func() time.Time) Option { return func(o *options) { o.clock = now } }

// WithPositions fixes node positions instead of scattering them randomly.
func WithPositions(p []topology.Vec3) Option { return func(o *options) { o.positions = p } }

// WithSpins fixes the initial spin assignment.
func WithSpins(sp []Spin) Option { return func(o *options) { o.spins = sp } }

// New validates cfg, places the nodes, builds the neighbour graph and draws
// the initial spins. Randomness is consumed in that order.
func New(cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clamped()

	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(uint64(cfg.Seed), 0))
	}

	positions := o.positions
	if positions == nil {
		positions = topology.RandomPositions(cfg.NumNodes, cfg.BoxSize, o.rng)
	} else if len(positions) != cfg.NumNodes {
		return nil, invalid("%d positions given for %d nodes", len(positions), cfg.NumNodes)
	}

	build := topology.Build
	if cfg.Search == KDTree {
		build = topology.BuildIndexed
	}
	g, err := build(positions, cfg.NeighborsCount)
	if err != nil {
		return nil, errors.Wrap(err, "spin: build neighbour graph")
	}

	spins, err := initialSpins(cfg, o)
	if err != nil {
		return nil, err
	}

	return &Simulator{
		cfg:         cfg,
		graph:       g,
		positions:   positions,
		spins:       spins,
		rng:         o.rng,
		clock:       o.clock,
		temperature: cfg.Temperature,
		field:       cfg.Field,
		lastDrift:   o.clock(),
		history:     NewHistory(cfg.HistoryCapacity),
		smoother:    Smoother{Alpha: cfg.Alpha},
	}, nil
}

func initialSpins(cfg Config, o options) ([]Spin, error) {
	if o.spins != nil {
		if len(o.spins) != cfg.NumNodes {
			return nil, errors.Wrapf(ErrInvalidSpins, "%d spins given for %d nodes", len(o.spins), cfg.NumNodes)
		}
		for i, v := range o.spins {
			if v < Down || v > Up || (v == Zero && !cfg.Ternary) {
				return nil, errors.Wrapf(ErrInvalidSpins, "spin %d has value %d", i, v)
			}
		}
		spins := make([]Spin, len(o.spins))
		copy(spins, o.spins)
		return spins, nil
	}

	spins := make([]Spin, cfg.NumNodes)
	for i := range spins {
		if cfg.Ternary {
			spins[i] = Spin(o.rng.IntN(3)) - 1
		} else if o.rng.Float64() < 0.5 {
			spins[i] = Up
		} else {
			spins[i] = Down
		}
	}
	return spins, nil
}

// Tick advances the simulation by one frame: drift, step, aggregate, emit.
func (s *Simulator) Tick() Signal {
	s.drift(s.clock())
	st := s.Step()

	m := s.Magnetization()
	s.history.Push(m)
	smoothed := s.smoother.Update(m)
	s.ticks++

	sig := Signal{
		Tick:          s.ticks,
		Magnetization: m,
		Smoothed:      smoothed,
		Temperature:   s.temperature,
		Field:         s.field,
		Energy:        s.Energy(),
		Trials:        st.Trials,
		Accepted:      st.Accepted,
	}
	for _, sub := range s.observers {
		sub.o.OnTick(sig)
	}
	return sig
}

// Subscribe registers o for every subsequent signal. The returned func
// removes it and may be called more than once.
func (s *Simulator) Subscribe(o Observer) (cancel func()) {
	s.nextSubID++
	id := s.nextSubID
	s.observers = append(s.observers, subscription{id: id, o: o})
	return func() {
		kept := make([]subscription, 0, len(s.observers))
		for _, sub := range s.observers {
			if sub.id != id {
				kept = append(kept, sub)
			}
		}
		s.observers = kept
	}
}

// Magnetization is the mean spin.
func (s *Simulator) Magnetization() float64 {
	total := 0
	for _, v := range s.spins {
		total += int(v)
	}
	return float64(total) / float64(len(s.spins))
}

// Energy is -J·Σ_edges s_i·s_j - h·Σ s_i.
func (s *Simulator) Energy() float64 {
	bond := 0
	for _, e := range s.graph.Edges() {
		bond += int(s.spins[e.I]) * int(s.spins[e.J])
	}
	total := 0
	for _, v := range s.spins {
		total += int(v)
	}
	return -s.cfg.Coupling*float64(bond) - s.field*float64(total)
}

func (s *Simulator) Config() Config             { return s.cfg }
func (s *Simulator) Graph() *topology.Graph     { return s.graph }
func (s *Simulator) Temperature() float64       { return s.temperature }
func (s *Simulator) Field() float64             { return s.field }
func (s *Simulator) Smoothed() float64          { return s.smoother.Value }
func (s *Simulator) Ticks() uint64              { return s.ticks }
func (s *Simulator) History() []float64         { return s.history.Values() }
func (s *Simulator) Positions() []topology.Vec3 { return s.positions }

// Spins returns a copy of the current spin assignment.
func (s *Simulator) Spins() []Spin {
	out := make([]Spin, len(s.spins))
	copy(out, s.spins)
	return out
}
