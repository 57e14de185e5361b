// Package metrics reduces a stream of spin.Signal values to summary numbers.
//
// Every type here implements spin.Metric and can be handed to
// Simulator.Subscribe or to an experiment run:
//
//	chi := metrics.NewSusceptibility(cfg.NumNodes)
//	cancel := s.Subscribe(chi)
//	defer cancel()
//
// Metrics keep no locks; feed each one from a single goroutine.
package metrics
