package repository

import (
	"context"
	"fmt"
	"interview-ace/internal/database"
	"time"
)

type TimelineDataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type ViolationBreakdownPoint struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// scoreColumns whitelists the chartable score columns. Column names are
// interpolated into SQL, so anything not in this map is rejected outright.
var scoreColumns = map[string]string{
	"overall":     "overall_score",
	"posture":     "avg_posture_score",
	"eye_contact": "avg_eye_contact_score",
}

// GetScoreTimeline returns one point per finished session for the given
// score key, oldest first.
func GetScoreTimeline(ctx context.Context, userID uint, scoreKey string) ([]TimelineDataPoint, error) {
	column, ok := scoreColumns[scoreKey]
	if !ok {
		return nil, fmt.Errorf("unknown score key: %q", scoreKey)
	}

	var data []TimelineDataPoint
	query := fmt.Sprintf(`
		SELECT
			ended_at AS date,
			%s AS value
		FROM interview_sessions
		WHERE user_id = ? AND ended_at IS NOT NULL
		ORDER BY ended_at;
	`, column)

	err := database.DB.WithContext(ctx).Raw(query, userID).Scan(&data).Error
	return data, err
}

// GetViolationTimeline returns the total violation count of each finished
// session, oldest first.
func GetViolationTimeline(ctx context.Context, userID uint) ([]TimelineDataPoint, error) {
	var data []TimelineDataPoint
	query := `
		SELECT
			ended_at AS date,
			total_violations AS value
		FROM interview_sessions
		WHERE user_id = ? AND ended_at IS NOT NULL
		ORDER BY ended_at;
	`
	err := database.DB.WithContext(ctx).Raw(query, userID).Scan(&data).Error
	return data, err
}

// GetViolationBreakdown aggregates a user's stored violations by kind across
// all of their sessions.
func GetViolationBreakdown(ctx context.Context, userID uint) ([]ViolationBreakdownPoint, error) {
	var data []ViolationBreakdownPoint
	query := `
		SELECT
			v.kind AS kind,
			COUNT(*) AS count
		FROM violation_records v
		JOIN interview_sessions s ON v.session_id = s.id
		WHERE s.user_id = ?
		GROUP BY v.kind
		ORDER BY count DESC;
	`
	err := database.DB.WithContext(ctx).Raw(query, userID).Scan(&data).Error
	return data, err
}
