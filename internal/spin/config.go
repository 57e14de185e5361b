package spin

import (
	"math"
	"time"
)

const (
	DefaultNumNodes            = 300
	DefaultNeighborsCount      = 4
	DefaultCoupling            = 1.0
	DefaultTemperature         = 1.0
	DefaultFluctuationInterval = 500 * time.Millisecond
	DefaultTrialsPerTick       = 100
	DefaultAlpha               = 0.01
	DefaultHistoryCapacity     = 200
	DefaultBoxSize             = 30.0
	DefaultDriftStep           = 0.1
)

// Bounds is a closed interval.
type Bounds struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (b Bounds) Clamp(v float64) float64 {
	return math.Min(b.Max, math.Max(b.Min, v))
}

func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

var (
	DefaultTemperatureBounds = Bounds{Min: 0.5, Max: 5}
	DefaultFieldBounds       = Bounds{Min: -5, Max: 5}
)

// Search selects the neighbour search used at construction.
type Search int

const (
	BruteForce Search = iota
	KDTree
)

type Config struct {
	NumNodes       int
	NeighborsCount int
	Coupling       float64
	// Temperature and Field are initial values; both drift.
	Temperature float64
	Field       float64
	Ternary     bool
	// FluctuationInterval is the minimum time between two drift steps.
	FluctuationInterval time.Duration

	TrialsPerTick   int
	Alpha           float64
	HistoryCapacity int
	BoxSize         float64
	// DriftStep is the full width of the uniform drift delta.
	DriftStep         float64
	TemperatureBounds Bounds
	FieldBounds       Bounds
	Search            Search
	Seed              int64
}

func DefaultConfig() Config {
	return Config{
		NumNodes:            DefaultNumNodes,
		NeighborsCount:      DefaultNeighborsCount,
		Coupling:            DefaultCoupling,
		Temperature:         DefaultTemperature,
		FluctuationInterval: DefaultFluctuationInterval,
		TrialsPerTick:       DefaultTrialsPerTick,
		Alpha:               DefaultAlpha,
		HistoryCapacity:     DefaultHistoryCapacity,
		BoxSize:             DefaultBoxSize,
		DriftStep:           DefaultDriftStep,
		TemperatureBounds:   DefaultTemperatureBounds,
		FieldBounds:         DefaultFieldBounds,
	}
}

// Validate reports the first reason the configuration cannot run. All
// returned errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.NumNodes <= 0:
		return invalid("numNodes must be positive, got %d", c.NumNodes)
	case c.NeighborsCount < 0:
		return invalid("neighborsCount must not be negative, got %d", c.NeighborsCount)
	case c.FluctuationInterval <= 0:
		return invalid("fluctuation interval must be positive, got %v", c.FluctuationInterval)
	case c.TrialsPerTick < 1:
		return invalid("trials per tick must be at least 1, got %d", c.TrialsPerTick)
	case !(c.Alpha > 0 && c.Alpha <= 1):
		return invalid("smoothing alpha must be in (0, 1], got %f", c.Alpha)
	case c.HistoryCapacity < 1:
		return invalid("history capacity must be at least 1, got %d", c.HistoryCapacity)
	case !(c.BoxSize > 0):
		return invalid("box size must be positive, got %f", c.BoxSize)
	case !(c.DriftStep >= 0):
		return invalid("drift step must not be negative, got %f", c.DriftStep)
	case !(c.TemperatureBounds.Min > 0) || !(c.TemperatureBounds.Max >= c.TemperatureBounds.Min):
		return invalid("temperature bounds must satisfy 0 < min <= max, got [%f, %f]",
			c.TemperatureBounds.Min, c.TemperatureBounds.Max)
	case !(c.FieldBounds.Max >= c.FieldBounds.Min):
		return invalid("field bounds must satisfy min <= max, got [%f, %f]",
			c.FieldBounds.Min, c.FieldBounds.Max)
	case !(c.Temperature > 0) || math.IsInf(c.Temperature, 0):
		return invalid("temperature must be positive and finite, got %f", c.Temperature)
	case math.IsNaN(c.Field) || math.IsInf(c.Field, 0):
		return invalid("field must be finite, got %f", c.Field)
	case math.IsNaN(c.Coupling) || math.IsInf(c.Coupling, 0):
		return invalid("coupling must be finite, got %f", c.Coupling)
	}
	return nil
}

// Clamped returns a copy with the initial temperature and field pulled into
// their bounds.
func (c Config) Clamped() Config {
	c.Temperature = c.TemperatureBounds.Clamp(c.Temperature)
	c.Field = c.FieldBounds.Clamp(c.Field)
	return c
}
