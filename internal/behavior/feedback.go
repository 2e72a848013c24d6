package behavior

// Coaching messages, in the fixed priority order the UI relies on: the
// first element is always the primary piece of advice.
const (
	feedbackSlouching  = "Sit up straight - you're slouching"
	feedbackLowPosture = "Adjust your posture to appear more confident"
	feedbackNervous    = "Try to minimize nervous hand movements"
	feedbackModerate   = "Keep your hand gestures calm and purposeful"
	feedbackEyeContact = "Look directly at the camera to maintain eye contact"
	feedbackAffirm     = "Great posture and presence - keep it up!"
)

const (
	lowPostureCutoff = 60
	lowEyeCutoff     = 50
)

// buildFeedback derives the advisory list for the current snapshot. At most
// one posture message (slouching wins), at most one hand message (nervous
// wins, calm says nothing), then eye contact; a clean frame earns exactly
// one affirmation.
func buildFeedback(postureScore int, slouching bool, level HandLevel, eyeScore int) []string {
	feedback := []string{}

	switch {
	case slouching:
		feedback = append(feedback, feedbackSlouching)
	case postureScore < lowPostureCutoff:
		feedback = append(feedback, feedbackLowPosture)
	}

	switch level {
	case HandNervous:
		feedback = append(feedback, feedbackNervous)
	case HandModerate:
		feedback = append(feedback, feedbackModerate)
	}

	if eyeScore < lowEyeCutoff {
		feedback = append(feedback, feedbackEyeContact)
	}

	if len(feedback) == 0 {
		feedback = append(feedback, feedbackAffirm)
	}

	return feedback
}
