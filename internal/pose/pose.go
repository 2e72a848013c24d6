// Package pose defines the landmark types produced by the client-side pose
// estimator. Coordinates follow the MediaPipe Pose convention: x and y are
// normalized image coordinates in [0,1] with y growing downward, z is
// camera-relative depth (smaller means closer to the camera), and visibility
// is the estimator's confidence in [0,1].
package pose

import "math"

// Landmark indices for the subset of the 33-point MediaPipe Pose topology
// that the analysis engine reads.
const (
	Nose          = 0
	LeftShoulder  = 11
	RightShoulder = 12
	LeftElbow     = 13
	RightElbow    = 14
	LeftWrist     = 15
	RightWrist    = 16
	LeftHip       = 23
	RightHip      = 24
)

// LandmarkCount is the full MediaPipe Pose topology size.
const LandmarkCount = 33

// DefaultMinVisibility is the reliability gate most scorers apply to a
// landmark before trusting its coordinates.
const DefaultMinVisibility = 0.5

type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Frame is one pose detection: landmarks in topology order. A frame shorter
// than the topology is legal; missing indices read as absent.
type Frame []Landmark

// At resolves the landmark at index i against a visibility gate. It is the
// single lookup path for every scorer: ok is false when the index is out of
// range or the landmark's visibility falls below minVisibility, and callers
// must substitute their neutral default in that case.
func (f Frame) At(i int, minVisibility float64) (Landmark, bool) {
	if i < 0 || i >= len(f) {
		return Landmark{}, false
	}
	lm := f[i]
	if lm.Visibility < minVisibility {
		return Landmark{}, false
	}
	return lm, true
}

// Midpoint returns the point halfway between a and b, averaging all three
// coordinates and the visibility.
func Midpoint(a, b Landmark) Landmark {
	return Landmark{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Z:          (a.Z + b.Z) / 2,
		Visibility: (a.Visibility + b.Visibility) / 2,
	}
}

// PlanarDistance returns the Euclidean distance between a and b in the image
// plane, ignoring depth.
func PlanarDistance(a, b Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
