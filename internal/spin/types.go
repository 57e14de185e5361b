package spin

// Spin is the state of a single node.
type Spin int8

const (
	Down Spin = -1
	Zero Spin = 0
	Up   Spin = 1
)

// Rand is the randomness a simulator draws from. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Uniform yields floats in [0, 1).
type Uniform interface {
	Float64() float64
}

// Signal is what a simulator emits once per tick.
type Signal struct {
	Tick          uint64  `json:"tick"`
	Magnetization float64 `json:"magnetization"`
	Smoothed      float64 `json:"smoothed"`
	Temperature   float64 `json:"temperature"`
	Field         float64 `json:"field"`
	Energy        float64 `json:"energy"`
	Trials        int     `json:"trials"`
	Accepted      int     `json:"accepted"`
}

// Disorder is 1 - |smoothed|: 0 when fully ordered, 1 when the smoothed
// magnetization sits at zero.
func (s Signal) Disorder() float64 {
	if s.Smoothed < 0 {
		return 1 + s.Smoothed
	}
	return 1 - s.Smoothed
}

// Trial records the outcome of one Metropolis trial.
type Trial struct {
	Node     int
	From, To Spin
	DeltaE   float64
	Accepted bool
}

// StepStats summarises the trials of one Step.
type StepStats struct {
	Trials   int
	Accepted int
}

type Observer interface {
	OnTick(sig Signal)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(sig Signal)

func (f ObserverFunc) OnTick(sig Signal) { f(sig) }

// Metric is an Observer that reduces the signal stream to one number.
type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}
