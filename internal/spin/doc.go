// Package spin implements a Monte Carlo spin system on a fixed neighbour
// graph and the magnetization signal derived from it.
//
// A [Simulator] owns everything that changes over time:
//
//   - spins: ±1, or {-1, 0, +1} in ternary mode
//   - temperature and field, which random-walk inside their bounds
//   - the magnetization history and its exponentially smoothed value
//
// The host calls [Simulator.Tick] once per frame. Each tick drifts the
// parameters when the fluctuation interval has elapsed, runs a fixed number
// of Metropolis trials, aggregates the magnetization and emits exactly one
// [Signal] to every subscribed [Observer].
//
// # Example
//
//	s, err := spin.New(spin.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	cancel := s.Subscribe(spin.ObserverFunc(func(sig spin.Signal) {
//	    fmt.Println(sig.Smoothed)
//	}))
//	defer cancel()
//	for i := 0; i < 600; i++ {
//	    s.Tick()
//	}
//
// # Thread Safety
//
// A Simulator is driven by a single goroutine and is NOT safe for
// concurrent use. Observers run on that goroutine and must return
// promptly; use [ChannelObserver] to hand signals to other goroutines.
package spin
