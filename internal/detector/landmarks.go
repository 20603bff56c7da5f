// Package detector extracts facial landmarks from video frames.
package detector

// Face mesh landmark indices following the MediaPipe convention with refined
// iris landmarks enabled. The iris centers are only present when refinement
// is on, which is why the full set has 478 points instead of 468.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	LeftIris          = 468
	RightIris         = 473
	NumFaceMeshPoints = 478
)

// Point3D is a landmark position normalized to [0,1] per axis (Z is relative depth).
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FaceLandmarks is the ordered landmark set of a single detected face.
type FaceLandmarks struct {
	Points []Point3D `json:"points"`
}

// Iris returns the left and right iris centers. ok is false when the set was
// produced without refined landmarks and the iris points are missing.
func (f FaceLandmarks) Iris() (left, right Point3D, ok bool) {
	if len(f.Points) <= RightIris {
		return Point3D{}, Point3D{}, false
	}
	return f.Points[LeftIris], f.Points[RightIris], true
}
