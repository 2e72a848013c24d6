package behavior

import (
	"time"

	"interview-ace/internal/pose"
)

// goodPostureFrame is a centered, upright candidate: posture 100, no
// slouch, eye contact 100, wrists still.
func goodPostureFrame() pose.Frame {
	f := make(pose.Frame, pose.LandmarkCount)
	set := func(i int, x, y, z float64) {
		f[i] = pose.Landmark{X: x, Y: y, Z: z, Visibility: 1.0}
	}
	set(pose.Nose, 0.5, 0.4, -0.3)
	set(pose.LeftShoulder, 0.35, 0.55, -0.1)
	set(pose.RightShoulder, 0.65, 0.55, -0.1)
	set(pose.LeftElbow, 0.3, 0.7, -0.05)
	set(pose.RightElbow, 0.7, 0.7, -0.05)
	set(pose.LeftWrist, 0.3, 0.85, -0.05)
	set(pose.RightWrist, 0.7, 0.85, -0.05)
	set(pose.LeftHip, 0.4, 0.95, 0.0)
	set(pose.RightHip, 0.6, 0.95, 0.0)
	return f
}

// gazeFrame moves the nose of a good frame, leaving the torso alone.
func gazeFrame(x, y float64) pose.Frame {
	f := goodPostureFrame()
	f[pose.Nose] = pose.Landmark{X: x, Y: y, Z: -0.3, Visibility: 1.0}
	return f
}

// posture80Frame tilts the shoulders so the tilt term scores 40 and the
// other two terms stay at 100: posture exactly 80, still no slouch.
func posture80Frame() pose.Frame {
	f := goodPostureFrame()
	f[pose.LeftShoulder] = pose.Landmark{X: 0.35, Y: 0.49, Z: -0.1, Visibility: 1.0}
	f[pose.RightShoulder] = pose.Landmark{X: 0.65, Y: 0.61, Z: -0.1, Visibility: 1.0}
	return f
}

// shiftWrists translates both wrists horizontally by dx on a copy, for
// driving hand-movement magnitude between consecutive frames.
func shiftWrists(f pose.Frame, dx float64) pose.Frame {
	shifted := make(pose.Frame, len(f))
	copy(shifted, f)
	for _, wrist := range [2]int{pose.LeftWrist, pose.RightWrist} {
		lm := shifted[wrist]
		lm.X += dx
		shifted[wrist] = lm
	}
	return shifted
}

// fakeClock drives engine debounce timers deterministically.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// newTestEngine wires a sourceless engine to a fake clock; tests feed
// Observe directly.
func newTestEngine(cfg Config) (*Engine, *fakeClock) {
	e := NewEngine(nil, cfg)
	clk := newFakeClock()
	e.now = clk.Now
	return e, clk
}

func present(f pose.Frame) Observation {
	return Observation{Frame: f, PersonPresent: true}
}

// eventually polls cond until it holds or the deadline passes, for the few
// lifecycle tests that cross goroutines.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return false
}

func countKind(events []CheatingEvent, kind ViolationKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
