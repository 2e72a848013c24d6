// Package behavior turns a stream of pose observations into live interview
// coaching metrics and integrity-violation events. One Engine serves one
// interview session: the body-language side scores posture, hand movement,
// and eye contact per frame and smooths them over rolling windows, while the
// integrity side runs debounced detectors for tab switches, look-aways,
// missing candidates, and the phone heuristic.
//
// The package is pure computation: it never touches HTTP, the database, or
// the config tree, and all timing goes through an injectable clock so the
// debounce rules are testable without sleeping.
package behavior

import (
	"time"

	"interview-ace/internal/pose"
)

// HandLevel classifies per-frame gross wrist displacement.
type HandLevel string

const (
	HandCalm     HandLevel = "calm"
	HandModerate HandLevel = "moderate"
	HandNervous  HandLevel = "nervous"
)

// ViolationKind is the closed set of integrity violation types.
type ViolationKind string

const (
	ViolationTabSwitch     ViolationKind = "tab_switch"
	ViolationLookingAway   ViolationKind = "looking_away"
	ViolationPhoneDetected ViolationKind = "phone_detected"
	ViolationPersonMissing ViolationKind = "person_missing"
)

// SuspicionLevel grades the cumulative violation total.
type SuspicionLevel string

const (
	SuspicionLow    SuspicionLevel = "low"
	SuspicionMedium SuspicionLevel = "medium"
	SuspicionHigh   SuspicionLevel = "high"
)

// CheatingEvent is one logged violation. Events are immutable once created;
// DurationMs is only set for the duration-debounced kinds.
type CheatingEvent struct {
	ID         string        `json:"id"`
	Kind       ViolationKind `json:"type"`
	Timestamp  time.Time     `json:"timestamp"`
	DurationMs int64         `json:"duration,omitempty"`
	Message    string        `json:"message"`
}

// BodyLanguageMetrics is the coaching snapshot republished after every
// processed frame. PostureScore and EyeContactScore are the current frame's
// values; the rolling windows only shape OverallScore.
type BodyLanguageMetrics struct {
	PostureScore      int       `json:"postureScore"`
	IsSlouchingNow    bool      `json:"isSlouchingNow"`
	HandMovementLevel HandLevel `json:"handMovementLevel"`
	HandMovementCount int       `json:"handMovementCount"`
	EyeContactScore   int       `json:"eyeContactScore"`
	OverallScore      int       `json:"overallScore"`
	Feedback          []string  `json:"feedback"`
}

// CheatingMetrics is the integrity snapshot. The counters are monotonic for
// the session; the event list is display-bounded and eviction never lowers
// a counter, so TotalViolations always equals the sum of the per-kind counts.
type CheatingMetrics struct {
	TabSwitchCount         int  `json:"tabSwitchCount"`
	LookingAwayCount       int  `json:"lookingAwayCount"`
	PhoneDetectedCount     int  `json:"phoneDetectedCount"`
	PersonMissingCount     int  `json:"personMissingCount"`
	TotalViolations        int  `json:"totalViolations"`
	IsTabVisible           bool `json:"isTabVisible"`
	IsCurrentlyLookingAway bool `json:"isCurrentlyLookingAway"`
	IsPhoneDetected        bool `json:"isPhoneDetected"`
	IsPersonMissing        bool `json:"isPersonMissing"`

	Events         []CheatingEvent `json:"events"`
	SuspicionLevel SuspicionLevel  `json:"suspicionLevel"`
}

// SessionStats carries the whole-session averages used by end-of-session
// summaries. FramesAnalyzed is zero when no frame has been scored yet.
type SessionStats struct {
	FramesAnalyzed     int `json:"framesAnalyzed"`
	AvgPostureScore    int `json:"avgPostureScore"`
	AvgEyeContactScore int `json:"avgEyeContactScore"`
	AvgOverallScore    int `json:"avgOverallScore"`
}

// Observation is one unit of input: the detector's pose frame (nil when it
// ran but found nobody), whether a person is in view, and whether a hand is
// near the face per the client-side proximity check.
type Observation struct {
	Frame         pose.Frame `json:"landmarks"`
	PersonPresent bool       `json:"personDetected"`
	HandNearFace  bool       `json:"handNearFace"`
}

// Config tunes the violation detectors. Zero values fall back to the
// defaults below. Out-of-range values are not validated; they only shift
// detection sensitivity.
type Config struct {
	// EyeContactThreshold is the score below which a frame counts toward a
	// look-away episode.
	EyeContactThreshold int
	// LookAwayDuration is how long eye contact must stay below the
	// threshold before one looking_away event fires.
	LookAwayDuration time.Duration
	// PersonMissingDuration is how long the person-present signal must stay
	// false before one person_missing event fires.
	PersonMissingDuration time.Duration
}

const (
	defaultEyeContactThreshold   = 40
	defaultLookAwayDuration      = 2000 * time.Millisecond
	defaultPersonMissingDuration = 3000 * time.Millisecond
)

func (c Config) withDefaults() Config {
	if c.EyeContactThreshold == 0 {
		c.EyeContactThreshold = defaultEyeContactThreshold
	}
	if c.LookAwayDuration == 0 {
		c.LookAwayDuration = defaultLookAwayDuration
	}
	if c.PersonMissingDuration == 0 {
		c.PersonMissingDuration = defaultPersonMissingDuration
	}
	return c
}

// defaultBodyLanguage is the snapshot before any frame arrives. Absent data
// reads as the most favorable value, never against the candidate.
func defaultBodyLanguage() BodyLanguageMetrics {
	return BodyLanguageMetrics{
		PostureScore:      100,
		IsSlouchingNow:    false,
		HandMovementLevel: HandCalm,
		HandMovementCount: 0,
		EyeContactScore:   100,
		OverallScore:      100,
		Feedback:          []string{},
	}
}

func defaultCheating() CheatingMetrics {
	return CheatingMetrics{
		IsTabVisible:   true,
		Events:         []CheatingEvent{},
		SuspicionLevel: SuspicionLow,
	}
}

// suspicionFor maps a cumulative violation total to its grade.
func suspicionFor(total int) SuspicionLevel {
	switch {
	case total < 5:
		return SuspicionLow
	case total < 10:
		return SuspicionMedium
	default:
		return SuspicionHigh
	}
}
