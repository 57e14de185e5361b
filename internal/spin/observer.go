package spin

import "sync/atomic"

// ChannelObserver forwards signals into a buffered channel without ever
// blocking the tick. Signals arriving while the buffer is full are dropped
// and counted.
type ChannelObserver struct {
	C       chan Signal
	dropped atomic.Uint64
}

func NewChannelObserver(buffer int) *ChannelObserver {
	return &ChannelObserver{C: make(chan Signal, buffer)}
}

func (c *ChannelObserver) OnTick(sig Signal) {
	select {
	case c.C <- sig:
	default:
		c.dropped.Add(1)
	}
}

func (c *ChannelObserver) Dropped() uint64 { return c.dropped.Load() }

// Recorder keeps every signal it sees.
type Recorder struct {
	Signals []Signal
}

func (r *Recorder) OnTick(sig Signal) { r.Signals = append(r.Signals, sig) }
