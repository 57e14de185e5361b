package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/spinsim/internal/experiment"
	"github.com/san-kum/spinsim/internal/spin"
)

const (
	DefaultTicks           = 600
	DefaultFrameIntervalMs = 1000.0 / 60
	DefaultNeighborSearch  = "brute"
)

type Config struct {
	NumNodes              int     `yaml:"numNodes"`
	NeighborsCount        int     `yaml:"neighborsCount"`
	Coupling              float64 `yaml:"coupling"`
	Temperature           float64 `yaml:"temperature"`
	Field                 float64 `yaml:"field"`
	TernaryMode           bool    `yaml:"ternaryMode"`
	FluctuationIntervalMs int     `yaml:"fluctuationIntervalMs"`

	TrialsPerTick     int         `yaml:"trialsPerTick"`
	Alpha             float64     `yaml:"alpha"`
	HistoryCapacity   int         `yaml:"historyCapacity"`
	BoxSize           float64     `yaml:"boxSize"`
	DriftStep         float64     `yaml:"driftStep"`
	TemperatureBounds spin.Bounds `yaml:"temperatureBounds"`
	FieldBounds       spin.Bounds `yaml:"fieldBounds"`
	NeighborSearch    string      `yaml:"neighborSearch"`
	// Seed is nil when the file leaves it out; zero is a valid seed.
	Seed              *int64      `yaml:"seed,omitempty"`

	// Headless runs only.
	Ticks           int     `yaml:"ticks"`
	FrameIntervalMs float64 `yaml:"frameIntervalMs"`
}

func DefaultConfig() *Config {
	d := spin.DefaultConfig()
	return &Config{
		NumNodes:              d.NumNodes,
		NeighborsCount:        d.NeighborsCount,
		Coupling:              d.Coupling,
		Temperature:           d.Temperature,
		Field:                 d.Field,
		TernaryMode:           d.Ternary,
		FluctuationIntervalMs: int(d.FluctuationInterval / time.Millisecond),
		TrialsPerTick:         d.TrialsPerTick,
		Alpha:                 d.Alpha,
		HistoryCapacity:       d.HistoryCapacity,
		BoxSize:               d.BoxSize,
		DriftStep:             d.DriftStep,
		TemperatureBounds:     d.TemperatureBounds,
		FieldBounds:           d.FieldBounds,
		NeighborSearch:        DefaultNeighborSearch,
		Ticks:                 DefaultTicks,
		FrameIntervalMs:       DefaultFrameIntervalMs,
	}
}

// Load reads a YAML file on top of the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return os.WriteFile(path, data, 0644)
}

func parseSearch(name string) (spin.Search, error) {
	switch name {
	case "", "brute":
		return spin.BruteForce, nil
	case "kdtree":
		return spin.KDTree, nil
	}
	return 0, errors.Wrapf(spin.ErrInvalidConfig, "unknown neighbour search %q (want brute or kdtree)", name)
}

// ToSpin converts to a validated simulator configuration. Initial values
// outside their bounds are logged; spin.New clamps them.
func (c *Config) ToSpin() (spin.Config, error) {
	search, err := parseSearch(c.NeighborSearch)
	if err != nil {
		return spin.Config{}, err
	}
	sc := spin.Config{
		NumNodes:            c.NumNodes,
		NeighborsCount:      c.NeighborsCount,
		Coupling:            c.Coupling,
		Temperature:         c.Temperature,
		Field:               c.Field,
		Ternary:             c.TernaryMode,
		FluctuationInterval: time.Duration(c.FluctuationIntervalMs) * time.Millisecond,
		TrialsPerTick:       c.TrialsPerTick,
		Alpha:               c.Alpha,
		HistoryCapacity:     c.HistoryCapacity,
		BoxSize:             c.BoxSize,
		DriftStep:           c.DriftStep,
		TemperatureBounds:   c.TemperatureBounds,
		FieldBounds:         c.FieldBounds,
		Search:              search,
	}
	if c.Seed != nil {
		sc.Seed = *c.Seed
	}
	if err := sc.Validate(); err != nil {
		return spin.Config{}, err
	}
	if !sc.TemperatureBounds.Contains(sc.Temperature) {
		klog.Warningf("config: temperature %g outside [%g, %g], clamping", sc.Temperature,
			sc.TemperatureBounds.Min, sc.TemperatureBounds.Max)
	}
	if !sc.FieldBounds.Contains(sc.Field) {
		klog.Warningf("config: field %g outside [%g, %g], clamping", sc.Field,
			sc.FieldBounds.Min, sc.FieldBounds.Max)
	}
	return sc, nil
}

// Experiment converts to a headless run configuration.
func (c *Config) Experiment() (experiment.Config, error) {
	sc, err := c.ToSpin()
	if err != nil {
		return experiment.Config{}, err
	}
	if c.Ticks <= 0 {
		return experiment.Config{}, errors.Errorf("ticks must be positive, got %d", c.Ticks)
	}
	return experiment.Config{
		Spin:          sc,
		Ticks:         c.Ticks,
		FrameInterval: time.Duration(c.FrameIntervalMs * float64(time.Millisecond)),
	}, nil
}
