package metrics

import "github.com/san-kum/spinsim/internal/spin"

// AcceptanceRate is the fraction of Metropolis trials that were taken.
type AcceptanceRate struct {
	name     string
	trials   int
	accepted int
}

func NewAcceptanceRate() *AcceptanceRate {
	return &AcceptanceRate{name: "acceptance_rate"}
}

func (a *AcceptanceRate) Name() string {
	return a.name
}

func (a *AcceptanceRate) OnTick(sig spin.Signal) {
	a.trials += sig.Trials
	a.accepted += sig.Accepted
}

func (a *AcceptanceRate) Value() float64 {
	if a.trials == 0 {
		return 0
	}
	return float64(a.accepted) / float64(a.trials)
}

func (a *AcceptanceRate) Reset() {
	a.trials = 0
	a.accepted = 0
}
