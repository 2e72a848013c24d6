package behavior

import "interview-ace/internal/pose"

// Magnitude is summed wrist displacement in normalized image space scaled
// by 100, so these read as "percent of frame width-ish per frame".
// Classification is threshold-inclusive: exactly 3.0 is moderate, exactly
// 8.0 is nervous.
const (
	magnitudeScale    = 100.0
	moderateThreshold = 3.0
	nervousThreshold  = 8.0
)

// calculateHandMagnitude measures gross wrist displacement between two
// consecutive frames. With no previous frame, or either wrist missing or
// unreliable in either frame, the whole measurement is insufficient and
// reads as 0.
func calculateHandMagnitude(prev, cur pose.Frame) float64 {
	if prev == nil || cur == nil {
		return 0
	}

	lBefore, lbOK := prev.At(pose.LeftWrist, pose.DefaultMinVisibility)
	rBefore, rbOK := prev.At(pose.RightWrist, pose.DefaultMinVisibility)
	lAfter, laOK := cur.At(pose.LeftWrist, pose.DefaultMinVisibility)
	rAfter, raOK := cur.At(pose.RightWrist, pose.DefaultMinVisibility)
	if !lbOK || !rbOK || !laOK || !raOK {
		return 0
	}

	sum := pose.PlanarDistance(lBefore, lAfter) + pose.PlanarDistance(rBefore, rAfter)
	return sum * magnitudeScale
}

// classifyHandLevel buckets a magnitude into the three coaching levels.
func classifyHandLevel(magnitude float64) HandLevel {
	switch {
	case magnitude >= nervousThreshold:
		return HandNervous
	case magnitude >= moderateThreshold:
		return HandModerate
	default:
		return HandCalm
	}
}

// movementBucket maps the rolling window's mean magnitude onto the score
// scale used by the overall formula.
func movementBucket(avgMagnitude float64) float64 {
	switch {
	case avgMagnitude < moderateThreshold:
		return 100
	case avgMagnitude < nervousThreshold:
		return 70
	default:
		return 40
	}
}
