package models

import (
	"time"

	"github.com/lib/pq"
)

// InterviewSession is the stored summary of one finished practice session.
// Score fields hold the rolling averages the engine reported at the moment
// the session ended, so dashboards never have to replay frames.
type InterviewSession struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"index" json:"userId"`
	User     User   `gorm:"foreignKey:UserID" json:"-"`
	Category string `json:"category"`
	Question string `json:"question"`

	StartedAt       time.Time  `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	DurationSeconds int        `json:"durationSeconds"`

	AvgPostureScore    int `json:"avgPostureScore"`
	AvgEyeContactScore int `json:"avgEyeContactScore"`
	OverallScore       int `json:"overallScore"`

	SlouchCount          int `json:"slouchCount"`
	NervousMovementCount int `json:"nervousMovementCount"`

	TabSwitchCount     int    `json:"tabSwitchCount"`
	LookingAwayCount   int    `json:"lookingAwayCount"`
	PhoneDetectedCount int    `json:"phoneDetectedCount"`
	PersonMissingCount int    `json:"personMissingCount"`
	TotalViolations    int    `json:"totalViolations"`
	SuspicionLevel     string `json:"suspicionLevel"`

	Feedback pq.StringArray `gorm:"type:text[]" json:"feedback"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ViolationRecord is a single integrity event tied to a session. EventID is
// the engine-assigned UUID so a client that already rendered the live event
// can match it against the stored row.
type ViolationRecord struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	SessionID  uint             `gorm:"index" json:"sessionId"`
	Session    InterviewSession `gorm:"foreignKey:SessionID" json:"-"`
	EventID    string           `json:"eventId"`
	Kind       string           `json:"type"`
	Message    string           `json:"message"`
	OccurredAt time.Time        `json:"occurredAt"`
	DurationMs int64            `json:"duration,omitempty"`
}
