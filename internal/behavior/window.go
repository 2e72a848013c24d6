package behavior

// windowCapacity is roughly one second of history at the nominal 30 fps
// frame rate.
const windowCapacity = 30

// rollingWindow is a fixed-capacity FIFO over recent per-frame values.
// Pushing past capacity evicts exactly the oldest element.
type rollingWindow struct {
	values   []float64
	capacity int
}

func newRollingWindow(capacity int) *rollingWindow {
	return &rollingWindow{
		values:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

func (w *rollingWindow) push(v float64) {
	if len(w.values) == w.capacity {
		copy(w.values, w.values[1:])
		w.values = w.values[:len(w.values)-1]
	}
	w.values = append(w.values, v)
}

// mean returns the average of the window's contents, or fallback when the
// window is still empty.
func (w *rollingWindow) mean(fallback float64) float64 {
	if len(w.values) == 0 {
		return fallback
	}
	sum := 0.0
	for _, v := range w.values {
		sum += v
	}
	return sum / float64(len(w.values))
}

func (w *rollingWindow) len() int {
	return len(w.values)
}

func (w *rollingWindow) reset() {
	w.values = w.values[:0]
}
