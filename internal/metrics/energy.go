package metrics

import "github.com/san-kum/spinsim/internal/spin"

// MeanEnergy averages the energy per node.
type MeanEnergy struct {
	name    string
	nodes   int
	total   float64
	samples int
}

func NewMeanEnergy(nodes int) *MeanEnergy {
	return &MeanEnergy{
		name:  "mean_energy",
		nodes: nodes,
	}
}

func (e *MeanEnergy) Name() string { return e.name }

func (e *MeanEnergy) OnTick(sig spin.Signal) {
	e.total += sig.Energy
	e.samples++
}

func (e *MeanEnergy) Value() float64 {
	if e.samples == 0 || e.nodes == 0 {
		return 0
	}
	return e.total / float64(e.samples) / float64(e.nodes)
}

func (e *MeanEnergy) Reset() {
	e.total = 0
	e.samples = 0
}
