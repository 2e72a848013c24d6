package behavior

import (
	"math"

	"interview-ace/internal/pose"
)

// Eye contact is approximated from where the nose sits in the frame. The
// vertical ideal sits above center because eye level does on a typical
// webcam. The nose needs more confidence than other landmarks before the
// score means anything.
const (
	gazeMinNoseVisibility = 0.7
	gazeIdealX            = 0.5
	gazeIdealY            = 0.4
	gazeHorizontalSlope   = 200.0
	gazeVerticalSlope     = 200.0

	// neutralEyeContact is returned when the nose cannot be trusted:
	// centered enough to avoid coaching noise, low enough to never read as
	// strong eye contact.
	neutralEyeContact = 50
)

// calculateEyeContact scores how close the candidate's face sits to the
// ideal on-camera position.
func calculateEyeContact(frame pose.Frame) int {
	nose, ok := frame.At(pose.Nose, gazeMinNoseVisibility)
	if !ok {
		return neutralEyeContact
	}

	horizontal := linearDecay(math.Abs(nose.X-gazeIdealX), gazeHorizontalSlope)
	vertical := linearDecay(math.Abs(nose.Y-gazeIdealY), gazeVerticalSlope)

	return int(math.Round((horizontal + vertical) / 2))
}
