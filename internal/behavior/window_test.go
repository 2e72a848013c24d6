package behavior

import (
	"math"
	"testing"
)

func TestRollingWindow_EvictsOldestAtCapacity(t *testing.T) {
	w := newRollingWindow(30)

	for i := 0; i < 31; i++ {
		w.push(float64(i))
	}

	if w.len() != 30 {
		t.Fatalf("len = %d, want 30 after 31 pushes", w.len())
	}
	// Element 0 is gone; 1 is now the oldest.
	if w.values[0] != 1 {
		t.Errorf("oldest = %v, want 1", w.values[0])
	}
	if w.values[29] != 30 {
		t.Errorf("newest = %v, want 30", w.values[29])
	}
}

func TestRollingWindow_MeanConverges(t *testing.T) {
	w := newRollingWindow(30)

	// Noise that should age out completely.
	w.push(0)
	w.push(10)

	for i := 0; i < 30; i++ {
		w.push(80)
	}

	if got := w.mean(0); math.Abs(got-80) > 1e-9 {
		t.Errorf("mean = %v, want exactly 80 once noise is evicted", got)
	}
}

func TestRollingWindow_MeanFallbackWhenEmpty(t *testing.T) {
	w := newRollingWindow(30)

	if got := w.mean(100); got != 100 {
		t.Errorf("mean of empty window = %v, want fallback 100", got)
	}

	w.push(60)
	w.reset()

	if got := w.mean(100); got != 100 {
		t.Errorf("mean after reset = %v, want fallback 100", got)
	}
}
