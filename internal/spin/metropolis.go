package spin

import "math"

// Accept applies the Metropolis criterion. Moves that do not raise the
// energy are taken without consuming randomness; otherwise one uniform draw
// is compared against exp(-dE/T). A non-positive temperature rejects every
// uphill move.
func Accept(dE, temperature float64, u Uniform) bool {
	if dE <= 0 {
		return true
	}
	if !(temperature > 0) {
		return false
	}
	return u.Float64() < math.Exp(-dE/temperature)
}

// DeltaE is the energy change of moving a spin from -> to under the given
// local field, for E = -s·local.
func DeltaE(from, to Spin, local float64) float64 {
	return float64(from-to) * local
}

// localField is J·Σ neighbour spins + h for node i.
func (s *Simulator) localField(i int) float64 {
	sum := 0
	for _, j := range s.graph.Neighbors(i) {
		sum += int(s.spins[j])
	}
	return s.cfg.Coupling*float64(sum) + s.field
}

// propose picks the candidate state for a spin. Binary spins flip; ternary
// spins move to one of the two other states with equal probability.
func (s *Simulator) propose(from Spin) Spin {
	if !s.cfg.Ternary {
		return -from
	}
	to := Spin(s.rng.IntN(2)) - 1
	if to >= from {
		to++
	}
	return to
}

// Trial runs a single Metropolis trial on a uniformly chosen node.
func (s *Simulator) Trial() Trial {
	i := s.rng.IntN(len(s.spins))
	from := s.spins[i]
	to := s.propose(from)
	dE := DeltaE(from, to, s.localField(i))

	t := Trial{Node: i, From: from, To: to, DeltaE: dE}
	if Accept(dE, s.temperature, s.rng) {
		s.spins[i] = to
		t.Accepted = true
	}
	return t
}

// Step runs TrialsPerTick sequential trials.
func (s *Simulator) Step() StepStats {
	st := StepStats{Trials: s.cfg.TrialsPerTick}
	for k := 0; k < s.cfg.TrialsPerTick; k++ {
		if s.Trial().Accepted {
			st.Accepted++
		}
	}
	return st
}
