package behavior

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"interview-ace/internal/pose"
)

func TestEngineDefaults(t *testing.T) {
	e, _ := newTestEngine(Config{})

	body, cheating := e.Snapshot()

	wantBody := BodyLanguageMetrics{
		PostureScore:      100,
		IsSlouchingNow:    false,
		HandMovementLevel: HandCalm,
		HandMovementCount: 0,
		EyeContactScore:   100,
		OverallScore:      100,
		Feedback:          []string{},
	}
	if !reflect.DeepEqual(body, wantBody) {
		t.Errorf("default body = %+v, want %+v", body, wantBody)
	}

	if cheating.TotalViolations != 0 || len(cheating.Events) != 0 {
		t.Errorf("default cheating has violations: %+v", cheating)
	}
	if !cheating.IsTabVisible {
		t.Error("IsTabVisible = false, want true by default")
	}
	if cheating.SuspicionLevel != SuspicionLow {
		t.Errorf("SuspicionLevel = %q, want %q", cheating.SuspicionLevel, SuspicionLow)
	}
	if cheating.Events == nil {
		t.Error("Events is nil, want empty slice")
	}
}

func TestObserve_GoodFrame(t *testing.T) {
	e, _ := newTestEngine(Config{})

	e.Observe(present(goodPostureFrame()))

	body := e.BodyLanguage()
	if body.PostureScore != 100 {
		t.Errorf("PostureScore = %d, want 100", body.PostureScore)
	}
	if body.EyeContactScore != 100 {
		t.Errorf("EyeContactScore = %d, want 100", body.EyeContactScore)
	}
	if body.OverallScore != 100 {
		t.Errorf("OverallScore = %d, want 100", body.OverallScore)
	}
	if body.HandMovementLevel != HandCalm {
		t.Errorf("HandMovementLevel = %q, want calm", body.HandMovementLevel)
	}
	if len(body.Feedback) != 1 || body.Feedback[0] != feedbackAffirm {
		t.Errorf("Feedback = %v, want just the affirmation", body.Feedback)
	}
}

func TestObserve_OverallUsesWindowedPosture(t *testing.T) {
	e, _ := newTestEngine(Config{})

	// Saturate both windows with a steady tilted pose.
	for i := 0; i < 35; i++ {
		e.Observe(present(posture80Frame()))
	}

	body := e.BodyLanguage()
	// Published posture is the per-frame score.
	if body.PostureScore != 80 {
		t.Errorf("PostureScore = %d, want 80", body.PostureScore)
	}
	// Overall blends the window mean: 0.4*80 + 0.3*100 + 0.3*100 = 92.
	if body.OverallScore != 92 {
		t.Errorf("OverallScore = %d, want 92", body.OverallScore)
	}
}

func TestObserve_NervousCounterIsMonotonic(t *testing.T) {
	e, _ := newTestEngine(Config{})

	base := goodPostureFrame()
	moved := shiftWrists(base, 0.05) // 2 wrists x 0.05 x 100 = 10, nervous

	e.Observe(present(base))
	e.Observe(present(moved))
	e.Observe(present(base))

	body := e.BodyLanguage()
	if body.HandMovementCount != 2 {
		t.Errorf("HandMovementCount = %d, want 2 (both big moves)", body.HandMovementCount)
	}

	// Holding still afterwards never decreases the counter.
	for i := 0; i < 5; i++ {
		e.Observe(present(base))
	}
	if got := e.BodyLanguage().HandMovementCount; got != 2 {
		t.Errorf("HandMovementCount = %d after calm frames, want 2", got)
	}
	if got := e.BodyLanguage().HandMovementLevel; got != HandCalm {
		t.Errorf("HandMovementLevel = %q, want calm again", got)
	}
}

func TestObserve_SlouchCounter(t *testing.T) {
	e, _ := newTestEngine(Config{})

	slouched := goodPostureFrame()
	for _, i := range []int{pose.LeftHip, pose.RightHip} {
		lm := slouched[i]
		lm.Y = 0.85 // torso/width ratio 1.0
		slouched[i] = lm
	}

	e.Observe(present(slouched))
	e.Observe(present(slouched))
	e.Observe(present(goodPostureFrame()))

	if got := e.SlouchCount(); got != 2 {
		t.Errorf("SlouchCount = %d, want 2", got)
	}
	if e.BodyLanguage().IsSlouchingNow {
		t.Error("IsSlouchingNow = true after an upright frame")
	}
}

func TestLookAway_FiresOncePerExcursion(t *testing.T) {
	e, clk := newTestEngine(Config{})
	away := gazeFrame(0.9, 0.8) // eye contact 20, below the default 40

	// 41 frames 50 ms apart: 2000 ms sustained.
	for i := 0; i < 41; i++ {
		if i > 0 {
			clk.advance(50 * time.Millisecond)
		}
		e.Observe(present(away))
	}

	cheating := e.Cheating()
	if cheating.LookingAwayCount != 1 {
		t.Fatalf("LookingAwayCount = %d, want exactly 1", cheating.LookingAwayCount)
	}
	if !cheating.IsCurrentlyLookingAway {
		t.Error("IsCurrentlyLookingAway = false while still away")
	}
	ev := cheating.Events[0]
	if ev.Kind != ViolationLookingAway {
		t.Errorf("event kind = %q, want looking_away", ev.Kind)
	}
	if ev.DurationMs < 2000 {
		t.Errorf("DurationMs = %d, want >= 2000", ev.DurationMs)
	}

	// Staying away keeps the same excursion: no further events.
	for i := 0; i < 20; i++ {
		clk.advance(50 * time.Millisecond)
		e.Observe(present(away))
	}
	if got := e.Cheating().LookingAwayCount; got != 1 {
		t.Errorf("LookingAwayCount = %d after sustained excursion, want 1", got)
	}

	// Recovery, then a fresh excursion fires independently.
	clk.advance(50 * time.Millisecond)
	e.Observe(present(goodPostureFrame()))
	if e.Cheating().IsCurrentlyLookingAway {
		t.Error("IsCurrentlyLookingAway = true after recovery")
	}

	for i := 0; i < 41; i++ {
		clk.advance(50 * time.Millisecond)
		e.Observe(present(away))
	}
	if got := e.Cheating().LookingAwayCount; got != 2 {
		t.Errorf("LookingAwayCount = %d after second excursion, want 2", got)
	}
}

func TestLookAway_ShortExcursionNeverFires(t *testing.T) {
	e, clk := newTestEngine(Config{})
	away := gazeFrame(0.9, 0.8)

	for round := 0; round < 3; round++ {
		for i := 0; i < 10; i++ {
			e.Observe(present(away))
			clk.advance(50 * time.Millisecond)
		}
		// Recover after 500 ms, well under the 2000 ms debounce.
		e.Observe(present(goodPostureFrame()))
		clk.advance(50 * time.Millisecond)
	}

	if got := e.Cheating().TotalViolations; got != 0 {
		t.Errorf("TotalViolations = %d, want 0 for short excursions", got)
	}
}

func TestPersonMissing_Debounce(t *testing.T) {
	e, clk := newTestEngine(Config{})
	gone := Observation{Frame: nil, PersonPresent: false}

	e.Observe(gone)
	clk.advance(2900 * time.Millisecond)
	e.Observe(gone)

	if got := e.Cheating().PersonMissingCount; got != 0 {
		t.Fatalf("PersonMissingCount = %d before 3000 ms, want 0", got)
	}

	clk.advance(100 * time.Millisecond)
	e.Observe(gone)

	cheating := e.Cheating()
	if cheating.PersonMissingCount != 1 {
		t.Fatalf("PersonMissingCount = %d, want 1", cheating.PersonMissingCount)
	}
	if !cheating.IsPersonMissing {
		t.Error("IsPersonMissing = false while absent")
	}
	if cheating.Events[0].DurationMs < 3000 {
		t.Errorf("DurationMs = %d, want >= 3000", cheating.Events[0].DurationMs)
	}

	// Coming back clears the flag but not the counter.
	e.Observe(present(goodPostureFrame()))
	cheating = e.Cheating()
	if cheating.IsPersonMissing {
		t.Error("IsPersonMissing = true after return")
	}
	if cheating.PersonMissingCount != 1 {
		t.Errorf("PersonMissingCount = %d after return, want 1", cheating.PersonMissingCount)
	}
}

func TestTabSwitch_EdgeTriggered(t *testing.T) {
	e, _ := newTestEngine(Config{})

	e.SetDocumentVisible(false)
	e.SetDocumentVisible(false) // repeated signal, same edge

	cheating := e.Cheating()
	if cheating.TabSwitchCount != 1 {
		t.Fatalf("TabSwitchCount = %d, want 1 for one edge", cheating.TabSwitchCount)
	}
	if cheating.IsTabVisible {
		t.Error("IsTabVisible = true while hidden")
	}

	// Regaining visibility emits nothing.
	e.SetDocumentVisible(true)
	cheating = e.Cheating()
	if cheating.TabSwitchCount != 1 {
		t.Errorf("TabSwitchCount = %d after regaining visibility, want 1", cheating.TabSwitchCount)
	}
	if !cheating.IsTabVisible {
		t.Error("IsTabVisible = false after regaining visibility")
	}

	// Focus loss is its own edge with its own message.
	e.SetWindowFocused(false)
	cheating = e.Cheating()
	if cheating.TabSwitchCount != 2 {
		t.Errorf("TabSwitchCount = %d after focus loss, want 2", cheating.TabSwitchCount)
	}
	if cheating.IsTabVisible {
		t.Error("IsTabVisible = true while unfocused")
	}
	if cheating.Events[0].Message != msgFocusLost {
		t.Errorf("message = %q, want %q", cheating.Events[0].Message, msgFocusLost)
	}

	e.SetWindowFocused(true)
	if !e.Cheating().IsTabVisible {
		t.Error("IsTabVisible = false after refocus")
	}
}

func TestPhoneHeuristic_RisingEdgeOnly(t *testing.T) {
	e, _ := newTestEngine(Config{})
	still := goodPostureFrame()

	// Hand near face while calm: one event on the rising edge.
	e.Observe(Observation{Frame: still, PersonPresent: true, HandNearFace: true})
	e.Observe(Observation{Frame: still, PersonPresent: true, HandNearFace: true})

	cheating := e.Cheating()
	if cheating.PhoneDetectedCount != 1 {
		t.Fatalf("PhoneDetectedCount = %d, want 1", cheating.PhoneDetectedCount)
	}
	if !cheating.IsPhoneDetected {
		t.Error("IsPhoneDetected = false while heuristic holds")
	}

	// Gesturing breaks the heuristic: flag clears, silently.
	e.Observe(Observation{Frame: shiftWrists(still, 0.05), PersonPresent: true, HandNearFace: true})
	cheating = e.Cheating()
	if cheating.IsPhoneDetected {
		t.Error("IsPhoneDetected = true during nervous movement")
	}
	if cheating.PhoneDetectedCount != 1 {
		t.Errorf("PhoneDetectedCount = %d after clearing, want 1", cheating.PhoneDetectedCount)
	}

	// Calming down with the hand still up is a fresh rising edge.
	e.Observe(Observation{Frame: shiftWrists(still, 0.05), PersonPresent: true, HandNearFace: true})
	if got := e.Cheating().PhoneDetectedCount; got != 2 {
		t.Errorf("PhoneDetectedCount = %d after second edge, want 2", got)
	}
}

func TestTriggerPhoneDetected_Manual(t *testing.T) {
	e, _ := newTestEngine(Config{})

	// No pose data at all; the manual path still records.
	e.TriggerPhoneDetected()

	cheating := e.Cheating()
	if cheating.PhoneDetectedCount != 1 {
		t.Errorf("PhoneDetectedCount = %d, want 1", cheating.PhoneDetectedCount)
	}
	if !cheating.IsPhoneDetected {
		t.Error("IsPhoneDetected = false after manual trigger")
	}
}

func TestTotalMatchesPerKindCounters(t *testing.T) {
	e, clk := newTestEngine(Config{})

	e.SetDocumentVisible(false)
	e.SetDocumentVisible(true)
	e.SetWindowFocused(false)
	e.SetWindowFocused(true)
	e.TriggerPhoneDetected()

	gone := Observation{Frame: nil, PersonPresent: false}
	e.Observe(gone)
	clk.advance(3 * time.Second)
	e.Observe(gone)

	away := gazeFrame(0.9, 0.8)
	e.Observe(present(away))
	clk.advance(2 * time.Second)
	e.Observe(present(away))

	cheating := e.Cheating()
	sum := cheating.TabSwitchCount + cheating.LookingAwayCount +
		cheating.PhoneDetectedCount + cheating.PersonMissingCount
	if cheating.TotalViolations != sum {
		t.Errorf("TotalViolations = %d, sum of counters = %d", cheating.TotalViolations, sum)
	}
	if cheating.TotalViolations != 5 {
		t.Errorf("TotalViolations = %d, want 5", cheating.TotalViolations)
	}
	if len(cheating.Events) != 5 {
		t.Errorf("len(Events) = %d, want 5", len(cheating.Events))
	}
}

func TestSuspicionLadder(t *testing.T) {
	e, _ := newTestEngine(Config{})

	emit := func() {
		e.SetDocumentVisible(false)
		e.SetDocumentVisible(true)
	}

	for i := 0; i < 4; i++ {
		emit()
	}
	if got := e.Cheating().SuspicionLevel; got != SuspicionLow {
		t.Errorf("SuspicionLevel at 4 = %q, want low", got)
	}

	emit() // 5th
	if got := e.Cheating().SuspicionLevel; got != SuspicionMedium {
		t.Errorf("SuspicionLevel at 5 = %q, want medium", got)
	}

	for i := 0; i < 4; i++ {
		emit()
	}
	if got := e.Cheating().SuspicionLevel; got != SuspicionMedium {
		t.Errorf("SuspicionLevel at 9 = %q, want medium", got)
	}

	emit() // 10th
	cheating := e.Cheating()
	if cheating.SuspicionLevel != SuspicionHigh {
		t.Errorf("SuspicionLevel at 10 = %q, want high", cheating.SuspicionLevel)
	}

	// All live flags are clear, yet suspicion never decreases in-session.
	if !cheating.IsTabVisible {
		t.Error("IsTabVisible = false, the tab was restored")
	}
	if got := e.Cheating().SuspicionLevel; got != SuspicionHigh {
		t.Errorf("SuspicionLevel = %q with clear flags, want high", got)
	}
}

func TestEventLogBoundedAtFifty(t *testing.T) {
	e, _ := newTestEngine(Config{})

	var seen []CheatingEvent
	e.OnViolation(func(ev CheatingEvent) {
		seen = append(seen, ev)
		_ = e.Cheating() // callback may re-enter the engine
	})

	for i := 0; i < 51; i++ {
		e.SetDocumentVisible(false)
		e.SetDocumentVisible(true)
	}

	if len(seen) != 51 {
		t.Fatalf("callback fired %d times, want 51", len(seen))
	}

	cheating := e.Cheating()
	if len(cheating.Events) != 50 {
		t.Fatalf("len(Events) = %d, want 50", len(cheating.Events))
	}
	if cheating.TotalViolations != 51 {
		t.Errorf("TotalViolations = %d, want 51 despite eviction", cheating.TotalViolations)
	}
	if cheating.TabSwitchCount != 51 {
		t.Errorf("TabSwitchCount = %d, want 51", cheating.TabSwitchCount)
	}

	// Newest first; the very first event fell off the end.
	if cheating.Events[0].ID != seen[50].ID {
		t.Error("Events[0] is not the newest event")
	}
	if cheating.Events[49].ID != seen[1].ID {
		t.Error("Events[49] is not the second event")
	}
	if countKind(cheating.Events, ViolationTabSwitch) != 50 {
		t.Error("evicted event still present in the log")
	}
	for _, ev := range cheating.Events {
		if ev.ID == seen[0].ID {
			t.Error("oldest event should have been evicted")
		}
	}
}

func TestReset_RestoresDefaultsAndTimers(t *testing.T) {
	e, clk := newTestEngine(Config{})
	away := gazeFrame(0.9, 0.8)

	// Dirty everything: a running look-away timer, some events, scores.
	e.Observe(present(away))
	clk.advance(1900 * time.Millisecond)
	e.Observe(present(away))
	e.SetDocumentVisible(false)
	e.TriggerPhoneDetected()

	e.Reset()

	body, cheating := e.Snapshot()
	if !reflect.DeepEqual(body, defaultBodyLanguage()) {
		t.Errorf("body after reset = %+v, want defaults", body)
	}
	if !reflect.DeepEqual(cheating, defaultCheating()) {
		t.Errorf("cheating after reset = %+v, want defaults", cheating)
	}
	if e.SlouchCount() != 0 {
		t.Errorf("SlouchCount = %d after reset, want 0", e.SlouchCount())
	}

	// The pre-reset 1900 ms must not count toward a new excursion: this
	// frame is a fresh start, not a 2050 ms sustained violation.
	clk.advance(150 * time.Millisecond)
	e.Observe(present(away))
	if got := e.Cheating().TotalViolations; got != 0 {
		t.Fatalf("TotalViolations = %d right after reset, want 0", got)
	}

	// And the detector still works from scratch.
	clk.advance(2000 * time.Millisecond)
	e.Observe(present(away))
	if got := e.Cheating().LookingAwayCount; got != 1 {
		t.Errorf("LookingAwayCount = %d after fresh excursion, want 1", got)
	}
}

func TestStats_AveragesWholeSession(t *testing.T) {
	e, _ := newTestEngine(Config{})

	if got := e.Stats(); got.FramesAnalyzed != 0 || got.AvgPostureScore != 100 {
		t.Fatalf("Stats before any frame = %+v, want 0 frames with neutral scores", got)
	}

	// posture 100, eye 100, overall 100
	e.Observe(present(goodPostureFrame()))
	// posture 80, eye 100; window-averaged overall = 0.4*90 + 0.3*100 + 0.3*100 = 96
	e.Observe(present(posture80Frame()))

	got := e.Stats()
	want := SessionStats{
		FramesAnalyzed:     2,
		AvgPostureScore:    90,
		AvgEyeContactScore: 100,
		AvgOverallScore:    98,
	}
	if got != want {
		t.Errorf("Stats after two frames = %+v, want %+v", got, want)
	}

	e.Reset()
	if got := e.Stats(); got.FramesAnalyzed != 0 || got.AvgOverallScore != 100 {
		t.Errorf("Stats after reset = %+v, want neutral", got)
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	e, _ := newTestEngine(Config{})
	e.Observe(present(goodPostureFrame()))
	e.TriggerPhoneDetected()

	body := e.BodyLanguage()
	body.Feedback[0] = "mutated"
	if got := e.BodyLanguage().Feedback[0]; got == "mutated" {
		t.Error("mutating a body snapshot leaked into the engine")
	}

	cheating := e.Cheating()
	cheating.Events[0].Message = "mutated"
	if got := e.Cheating().Events[0].Message; got == "mutated" {
		t.Error("mutating a cheating snapshot leaked into the engine")
	}
}

func TestEngineLifecycle(t *testing.T) {
	src := NewPushSource(8)
	e := NewEngine(src, Config{})

	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := e.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}

	if !src.Push(present(gazeFrame(0.9, 0.8))) {
		t.Fatal("Push dropped with the engine running")
	}
	if !eventually(func() bool { return e.BodyLanguage().EyeContactScore == 20 }) {
		t.Fatal("pushed frame was never processed")
	}

	e.Stop()
	if e.Running() {
		t.Error("Running() = true after Stop")
	}
	e.Stop() // idempotent

	if src.Push(present(goodPostureFrame())) {
		t.Error("Push succeeded after Stop, want the source released")
	}
	if got := e.BodyLanguage().EyeContactScore; got != 20 {
		t.Errorf("EyeContactScore after Stop = %d, want the final 20", got)
	}
}

func TestEngineStart_Failures(t *testing.T) {
	e := NewEngine(nil, Config{})
	if err := e.Start(context.Background()); err == nil {
		t.Error("Start() with no source = nil error, want failure")
	}

	e = NewEngine(failingSource{}, Config{})
	if err := e.Start(context.Background()); err == nil {
		t.Error("Start() with a broken source = nil error, want failure")
	}
	if e.Running() {
		t.Error("Running() = true after failed start")
	}
}

func TestEngineStopsWhenSourceCloses(t *testing.T) {
	src := NewPushSource(1)
	e := NewEngine(src, Config{})

	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	src.Stop()
	if !eventually(func() bool { return !e.Running() }) {
		t.Error("engine still running after its source closed")
	}
}

type failingSource struct{}

func (failingSource) Start(context.Context) (<-chan Observation, error) {
	return nil, errors.New("camera unavailable")
}

func (failingSource) Stop() error { return nil }
