package behavior

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"interview-ace/internal/pose"
)

// How many events the published log retains for display. Counters keep
// counting past this bound.
const eventLogCapacity = 50

// Violation event messages.
const (
	msgTabSwitch = "Tab switch or window minimized detected"
	msgFocusLost = "Window focus lost"
	msgPhone     = "Phone or object detected near face"
)

// ErrAlreadyRunning is returned by Start on an engine whose frame loop is
// still alive.
var ErrAlreadyRunning = errors.New("analysis already running")

// Engine owns all per-session analysis state. Frames run to completion one
// at a time; the visibility, focus, phone, and reset signals may interleave
// from other goroutines, so everything is guarded by one mutex. Published
// snapshots are copies and never alias engine internals.
type Engine struct {
	mu  sync.Mutex
	cfg Config
	now func() time.Time

	source  FrameSource
	cancel  context.CancelFunc
	done    chan struct{}
	running bool

	// Body language.
	prevFrame    pose.Frame
	postureWin   *rollingWindow
	motionWin    *rollingWindow
	slouchCount  int
	nervousCount int
	body         BodyLanguageMetrics

	// Session-long accumulators for the end-of-session summary. Unlike the
	// rolling windows these never forget.
	frameCount int
	sumPosture float64
	sumEye     float64
	sumOverall float64

	// Integrity.
	docVisible         bool
	winFocused         bool
	lookAwayStart      time.Time
	lookingAway        bool
	missingStart       time.Time
	personMissing      bool
	phoneDetected      bool
	tabSwitchCount     int
	lookingAwayCount   int
	phoneDetectedCount int
	personMissingCount int
	total              int
	events             []CheatingEvent

	onViolation func(CheatingEvent)
}

// NewEngine builds an engine over the given source. The source may be nil
// for callers that feed Observe directly; Start then refuses to run.
func NewEngine(source FrameSource, cfg Config) *Engine {
	return &Engine{
		cfg:        cfg.withDefaults(),
		now:        time.Now,
		source:     source,
		postureWin: newRollingWindow(windowCapacity),
		motionWin:  newRollingWindow(windowCapacity),
		docVisible: true,
		winFocused: true,
		body:       defaultBodyLanguage(),
	}
}

// OnViolation registers the callback invoked once per emitted event. It
// runs outside the engine lock on whichever goroutine caused the emission
// and must return promptly so frame processing is never held up.
func (e *Engine) OnViolation(fn func(CheatingEvent)) {
	e.mu.Lock()
	e.onViolation = fn
	e.mu.Unlock()
}

// Start acquires the frame source and begins consuming. A source that
// cannot start is a hard failure here and only here; once running, a silent
// source is tolerated indefinitely.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	if e.source == nil {
		e.mu.Unlock()
		return errors.New("no frame source configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	frames, err := e.source.Start(runCtx)
	if err != nil {
		cancel()
		e.mu.Unlock()
		return fmt.Errorf("starting frame source: %w", err)
	}

	e.running = true
	e.cancel = cancel
	e.done = make(chan struct{})
	done := e.done
	e.mu.Unlock()

	go e.consume(runCtx, frames, done)
	return nil
}

// consume drains the frame channel until it closes or the context ends.
// The source is released on every exit path.
func (e *Engine) consume(ctx context.Context, frames <-chan Observation, done chan struct{}) {
	defer func() {
		e.source.Stop()
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case obs, ok := <-frames:
			if !ok {
				return
			}
			e.Observe(obs)
		}
	}
}

// Stop halts frame consumption and waits for the loop to release the
// source. Idempotent, safe before Start, and the final snapshots remain
// readable afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	done := e.done
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Running reports whether the frame loop is alive.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Observe processes one observation: scores body language when a pose is
// present, then runs the violation detectors. One bad frame can degrade
// scores to their neutral values but never errors or halts the stream.
func (e *Engine) Observe(obs Observation) {
	e.mu.Lock()
	now := e.now()
	var emitted []CheatingEvent

	if obs.Frame != nil {
		emitted = e.processFrame(obs, now)
	} else {
		// A gap in detections breaks frame adjacency; the next frame's
		// hand movement starts from scratch instead of measuring the jump
		// across the gap.
		e.prevFrame = nil
	}

	emitted = append(emitted, e.checkPresence(obs.PersonPresent, now)...)

	cb := e.onViolation
	e.mu.Unlock()

	fire(cb, emitted)
}

func (e *Engine) processFrame(obs Observation, now time.Time) []CheatingEvent {
	posture := calculatePosture(obs.Frame)
	magnitude := calculateHandMagnitude(e.prevFrame, obs.Frame)
	level := classifyHandLevel(magnitude)
	eye := calculateEyeContact(obs.Frame)
	e.prevFrame = obs.Frame

	e.postureWin.push(float64(posture.Score))
	e.motionWin.push(magnitude)
	if posture.IsSlouching {
		e.slouchCount++
	}
	if level == HandNervous {
		e.nervousCount++
	}

	avgPosture := e.postureWin.mean(100)
	bucket := movementBucket(e.motionWin.mean(0))
	overall := int(math.Round(0.4*avgPosture + 0.3*bucket + 0.3*float64(eye)))

	e.frameCount++
	e.sumPosture += float64(posture.Score)
	e.sumEye += float64(eye)
	e.sumOverall += float64(overall)

	e.body = BodyLanguageMetrics{
		PostureScore:      posture.Score,
		IsSlouchingNow:    posture.IsSlouching,
		HandMovementLevel: level,
		HandMovementCount: e.nervousCount,
		EyeContactScore:   eye,
		OverallScore:      overall,
		Feedback:          buildFeedback(posture.Score, posture.IsSlouching, level, eye),
	}

	var emitted []CheatingEvent
	emitted = append(emitted, e.checkLookAway(eye, now)...)
	emitted = append(emitted, e.checkPhone(obs.HandNearFace, level)...)
	return emitted
}

// checkLookAway debounces low eye contact. The first frame below the
// threshold starts the timer without emitting; once the excursion has been
// sustained for the configured duration, exactly one event fires and the
// flag latches. Recovery clears both silently.
func (e *Engine) checkLookAway(eyeScore int, now time.Time) []CheatingEvent {
	if eyeScore >= e.cfg.EyeContactThreshold {
		e.lookAwayStart = time.Time{}
		e.lookingAway = false
		return nil
	}
	if e.lookAwayStart.IsZero() {
		e.lookAwayStart = now
		return nil
	}
	elapsed := now.Sub(e.lookAwayStart)
	if elapsed < e.cfg.LookAwayDuration || e.lookingAway {
		return nil
	}
	e.lookingAway = true
	ev := e.recordEvent(ViolationLookingAway,
		fmt.Sprintf("Looked away from screen for %.1fs", elapsed.Seconds()), elapsed)
	return []CheatingEvent{ev}
}

// checkPresence debounces the person-present signal with the same shape as
// checkLookAway, on its own duration threshold.
func (e *Engine) checkPresence(present bool, now time.Time) []CheatingEvent {
	if present {
		e.missingStart = time.Time{}
		e.personMissing = false
		return nil
	}
	if e.missingStart.IsZero() {
		e.missingStart = now
		return nil
	}
	elapsed := now.Sub(e.missingStart)
	if elapsed < e.cfg.PersonMissingDuration || e.personMissing {
		return nil
	}
	e.personMissing = true
	ev := e.recordEvent(ViolationPersonMissing,
		fmt.Sprintf("No person detected in frame for %.1fs", elapsed.Seconds()), elapsed)
	return []CheatingEvent{ev}
}

// checkPhone evaluates the phone heuristic: a hand near the face while
// wrist movement is calm reads as holding something still. Emits on the
// rising edge only; the falling edge clears silently.
func (e *Engine) checkPhone(handNearFace bool, level HandLevel) []CheatingEvent {
	likely := handNearFace && level == HandCalm
	if likely == e.phoneDetected {
		return nil
	}
	e.phoneDetected = likely
	if !likely {
		return nil
	}
	ev := e.recordEvent(ViolationPhoneDetected, msgPhone, 0)
	return []CheatingEvent{ev}
}

// SetDocumentVisible feeds the document-visibility signal. The transition
// to hidden emits immediately with no debounce; becoming visible again
// only clears the flag.
func (e *Engine) SetDocumentVisible(visible bool) {
	e.mu.Lock()
	var emitted []CheatingEvent
	if !visible && e.docVisible {
		emitted = append(emitted, e.recordEvent(ViolationTabSwitch, msgTabSwitch, 0))
	}
	e.docVisible = visible
	cb := e.onViolation
	e.mu.Unlock()

	fire(cb, emitted)
}

// SetWindowFocused feeds the window-focus signal, with the same edge
// semantics as SetDocumentVisible.
func (e *Engine) SetWindowFocused(focused bool) {
	e.mu.Lock()
	var emitted []CheatingEvent
	if !focused && e.winFocused {
		emitted = append(emitted, e.recordEvent(ViolationTabSwitch, msgFocusLost, 0))
	}
	e.winFocused = focused
	cb := e.onViolation
	e.mu.Unlock()

	fire(cb, emitted)
}

// TriggerPhoneDetected force-records a phone violation, bypassing the
// heuristic, for callers that spot one without pose data. The flag stays
// set until the next evaluated frame.
func (e *Engine) TriggerPhoneDetected() {
	e.mu.Lock()
	e.phoneDetected = true
	ev := e.recordEvent(ViolationPhoneDetected, msgPhone, 0)
	cb := e.onViolation
	e.mu.Unlock()

	fire(cb, []CheatingEvent{ev})
}

// Reset returns every score, window, counter, flag, timer, and the event
// log to the pristine state. It emits nothing and does not stop frame
// delivery.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.prevFrame = nil
	e.postureWin.reset()
	e.motionWin.reset()
	e.slouchCount = 0
	e.nervousCount = 0
	e.body = defaultBodyLanguage()
	e.frameCount = 0
	e.sumPosture = 0
	e.sumEye = 0
	e.sumOverall = 0

	e.docVisible = true
	e.winFocused = true
	e.lookAwayStart = time.Time{}
	e.lookingAway = false
	e.missingStart = time.Time{}
	e.personMissing = false
	e.phoneDetected = false
	e.tabSwitchCount = 0
	e.lookingAwayCount = 0
	e.phoneDetectedCount = 0
	e.personMissingCount = 0
	e.total = 0
	e.events = nil
}

// BodyLanguage returns a copy of the current coaching snapshot.
func (e *Engine) BodyLanguage() BodyLanguageMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bodyLocked()
}

// Cheating returns a copy of the current integrity snapshot.
func (e *Engine) Cheating() CheatingMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cheatingLocked()
}

// Snapshot returns both snapshots from the same locked instant, so a
// transport can publish a consistent pair.
func (e *Engine) Snapshot() (BodyLanguageMetrics, CheatingMetrics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bodyLocked(), e.cheatingLocked()
}

// SlouchCount reports the monotonic count of slouching frames, for session
// summaries.
func (e *Engine) SlouchCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slouchCount
}

// Stats averages every frame seen since the last reset. With no frames yet
// it reports the same neutral scores the live snapshot starts from.
func (e *Engine) Stats() SessionStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.frameCount == 0 {
		return SessionStats{
			AvgPostureScore:    100,
			AvgEyeContactScore: 100,
			AvgOverallScore:    100,
		}
	}
	n := float64(e.frameCount)
	return SessionStats{
		FramesAnalyzed:     e.frameCount,
		AvgPostureScore:    int(math.Round(e.sumPosture / n)),
		AvgEyeContactScore: int(math.Round(e.sumEye / n)),
		AvgOverallScore:    int(math.Round(e.sumOverall / n)),
	}
}

func (e *Engine) bodyLocked() BodyLanguageMetrics {
	snap := e.body
	snap.Feedback = append([]string{}, e.body.Feedback...)
	return snap
}

func (e *Engine) cheatingLocked() CheatingMetrics {
	events := make([]CheatingEvent, len(e.events))
	copy(events, e.events)

	return CheatingMetrics{
		TabSwitchCount:         e.tabSwitchCount,
		LookingAwayCount:       e.lookingAwayCount,
		PhoneDetectedCount:     e.phoneDetectedCount,
		PersonMissingCount:     e.personMissingCount,
		TotalViolations:        e.total,
		IsTabVisible:           e.docVisible && e.winFocused,
		IsCurrentlyLookingAway: e.lookingAway,
		IsPhoneDetected:        e.phoneDetected,
		IsPersonMissing:        e.personMissing,
		Events:                 events,
		SuspicionLevel:         suspicionFor(e.total),
	}
}

// recordEvent is the single emission path: prepend to the log, trim to the
// display bound, bump the counters. Callers must hold the mutex and are
// responsible for firing the callback after unlocking.
func (e *Engine) recordEvent(kind ViolationKind, message string, sustained time.Duration) CheatingEvent {
	ev := CheatingEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Timestamp: e.now(),
		Message:   message,
	}
	if sustained > 0 {
		ev.DurationMs = sustained.Milliseconds()
	}

	e.events = append([]CheatingEvent{ev}, e.events...)
	if len(e.events) > eventLogCapacity {
		e.events = e.events[:eventLogCapacity]
	}

	switch kind {
	case ViolationTabSwitch:
		e.tabSwitchCount++
	case ViolationLookingAway:
		e.lookingAwayCount++
	case ViolationPhoneDetected:
		e.phoneDetectedCount++
	case ViolationPersonMissing:
		e.personMissingCount++
	}
	e.total++

	return ev
}

func fire(cb func(CheatingEvent), events []CheatingEvent) {
	if cb == nil {
		return
	}
	for _, ev := range events {
		cb(ev)
	}
}
