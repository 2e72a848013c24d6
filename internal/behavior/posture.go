package behavior

import (
	"math"

	"interview-ace/internal/pose"
)

// Posture geometry thresholds. Slopes are the k in max(0, 100 - k*|dev|)
// and were tuned against typical laptop-webcam framing.
const (
	shoulderTiltSlope = 500.0
	forwardLeanSlope  = 250.0
	headOffsetSlope   = 300.0

	// Leaning is tolerated up to this much depth separation before the
	// forward-lean term starts decaying.
	forwardLeanSlack = 0.10

	// Slouch triggers: torso height shrinks below this multiple of shoulder
	// width, or the lean alone passes the stricter depth threshold.
	slouchCompressionRatio = 1.15
	slouchLeanThreshold    = 0.25
)

type postureResult struct {
	Score       int
	IsSlouching bool
}

// neutralPosture is the fail-open result for insufficient data: perfect
// score, no slouch. Coaching never penalizes what it cannot see.
func neutralPosture() postureResult {
	return postureResult{Score: 100, IsSlouching: false}
}

// calculatePosture scores one frame from shoulder tilt, forward lean, and
// head offset, and independently flags slouching from torso compression.
func calculatePosture(frame pose.Frame) postureResult {
	nose, noseOK := frame.At(pose.Nose, pose.DefaultMinVisibility)
	lShoulder, lsOK := frame.At(pose.LeftShoulder, pose.DefaultMinVisibility)
	rShoulder, rsOK := frame.At(pose.RightShoulder, pose.DefaultMinVisibility)
	lHip, lhOK := frame.At(pose.LeftHip, pose.DefaultMinVisibility)
	rHip, rhOK := frame.At(pose.RightHip, pose.DefaultMinVisibility)

	if !noseOK || !lsOK || !rsOK || !lhOK || !rhOK {
		return neutralPosture()
	}

	shoulderMid := pose.Midpoint(lShoulder, rShoulder)
	hipMid := pose.Midpoint(lHip, rHip)

	// Shoulder tilt: vertical misalignment of the two shoulders.
	tilt := math.Abs(lShoulder.Y - rShoulder.Y)
	tiltScore := linearDecay(tilt, shoulderTiltSlope)

	// Forward lean: shoulders closer to the camera than the hips. Depth
	// grows toward the camera as z shrinks, so a positive separation means
	// leaning in. Leaning back is never penalized.
	lean := hipMid.Z - shoulderMid.Z
	leanScore := linearDecay(math.Max(0, lean-forwardLeanSlack), forwardLeanSlope)

	// Head offset: nose drifting sideways off the shoulder center.
	headOffset := math.Abs(nose.X - shoulderMid.X)
	headScore := linearDecay(headOffset, headOffsetSlope)

	score := int(math.Round((tiltScore + leanScore + headScore) / 3))

	return postureResult{
		Score:       score,
		IsSlouching: isSlouching(shoulderMid, hipMid, lShoulder, rShoulder, lean),
	}
}

// isSlouching checks torso compression against shoulder width, or a
// pronounced forward lean. Either condition triggers on its own.
func isSlouching(shoulderMid, hipMid, lShoulder, rShoulder pose.Landmark, lean float64) bool {
	if lean > slouchLeanThreshold {
		return true
	}

	shoulderWidth := math.Abs(lShoulder.X - rShoulder.X)
	if shoulderWidth < 1e-6 {
		// Degenerate frame, compression is meaningless.
		return false
	}

	// y grows downward, so hips sit below shoulders in image space.
	torsoHeight := hipMid.Y - shoulderMid.Y
	return torsoHeight/shoulderWidth < slouchCompressionRatio
}

func linearDecay(deviation, slope float64) float64 {
	return math.Max(0, 100-slope*deviation)
}
