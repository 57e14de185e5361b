package metrics

import (
	"math"

	"github.com/san-kum/spinsim/internal/spin"
)

// OrderedFraction counts the share of ticks whose smoothed magnetization
// magnitude reaches the threshold.
type OrderedFraction struct {
	name      string
	threshold float64
	ordered   int
	samples   int
}

func NewOrderedFraction(threshold float64) *OrderedFraction {
	return &OrderedFraction{
		name:      "ordered_fraction",
		threshold: threshold,
	}
}

func (o *OrderedFraction) Name() string {
	return o.name
}

func (o *OrderedFraction) OnTick(sig spin.Signal) {
	o.samples++
	if math.Abs(sig.Smoothed) >= o.threshold {
		o.ordered++
	}
}

func (o *OrderedFraction) Value() float64 {
	if o.samples == 0 {
		return 0
	}
	return float64(o.ordered) / float64(o.samples)
}

func (o *OrderedFraction) Reset() {
	o.ordered = 0
	o.samples = 0
}

// Standard returns the metric set attached to every experiment run.
func Standard(nodes int) []spin.Metric {
	return []spin.Metric{
		NewMeanAbsMagnetization(),
		NewSusceptibility(nodes),
		NewBinderCumulant(),
		NewMeanEnergy(nodes),
		NewAcceptanceRate(),
		NewOrderedFraction(0.5),
	}
}
