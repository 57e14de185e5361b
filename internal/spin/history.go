package spin

import "github.com/emirpasic/gods/queues/circularbuffer"

// History keeps the most recent magnetization values, evicting the oldest
// once full.
type History struct {
	buf  *circularbuffer.Queue
	cap  int
	last float64
}

func NewHistory(capacity int) *History {
	return &History{buf: circularbuffer.New(capacity), cap: capacity}
}

func (h *History) Push(v float64) {
	h.buf.Enqueue(v)
	h.last = v
}

func (h *History) Len() int { return h.buf.Size() }
func (h *History) Cap() int { return h.cap }

// Last returns the newest value.
func (h *History) Last() (float64, bool) {
	if h.buf.Empty() {
		return 0, false
	}
	return h.last, true
}

// Values returns the buffered values, oldest first.
func (h *History) Values() []float64 {
	raw := h.buf.Values()
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = v.(float64)
	}
	return out
}

func (h *History) Clear() {
	h.buf.Clear()
	h.last = 0
}

// Smoother is an exponentially weighted moving average.
type Smoother struct {
	Alpha float64
	Value float64
}

func (e *Smoother) Update(x float64) float64 {
	e.Value += e.Alpha * (x - e.Value)
	return e.Value
}
