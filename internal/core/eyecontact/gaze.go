// Package eyecontact estimates how much of a video the speaker spends looking
// at the camera.
package eyecontact

import "github.com/steveyiyo/jarvis-backend/internal/detector"

// GazeBand is the horizontal interval, in normalized frame coordinates, that
// counts as looking at the camera. Both bounds are exclusive.
//
// This is a crude proxy: it only looks at where the irises sit horizontally
// in the frame. There is no vertical check, so looking at the desk while
// centered still counts as eye contact.
type GazeBand struct {
	Min float64
	Max float64
}

// DefaultGazeBand is centered on the horizontal midline.
var DefaultGazeBand = GazeBand{Min: 0.35, Max: 0.65}

// Indicator is the mean horizontal position of both iris centers.
func Indicator(face detector.FaceLandmarks) (float64, bool) {
	left, right, ok := face.Iris()
	if !ok {
		return 0, false
	}
	return (left.X + right.X) / 2, true
}

// Contains reports whether x lies strictly inside the band.
func (b GazeBand) Contains(x float64) bool {
	return b.Min < x && x < b.Max
}

// Classify reports whether face is looking at the camera. A landmark set
// without iris points never counts as looking.
func (b GazeBand) Classify(face detector.FaceLandmarks) bool {
	x, ok := Indicator(face)
	if !ok {
		return false
	}
	return b.Contains(x)
}
