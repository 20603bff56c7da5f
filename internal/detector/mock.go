package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// Detection is one scripted MockDetector result.
type Detection struct {
	Face  FaceLandmarks
	Found bool
}

// MockDetector is a test implementation of the Detector interface.
// With a sequence set, each Detect call consumes the next entry; once the
// sequence is exhausted it falls back to the fixed result.
type MockDetector struct {
	mu       sync.Mutex
	face     FaceLandmarks
	found    bool
	sequence []Detection
	err      error
	calls    int
}

// NewMockDetector creates a MockDetector that reports no face.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFace makes every Detect call report face.
func (m *MockDetector) SetFace(face FaceLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.face = face
	m.found = true
}

// SetSequence scripts the results of the next len(seq) calls.
func (m *MockDetector) SetSequence(seq []Detection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = append([]Detection(nil), seq...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next scripted result.
func (m *MockDetector) Detect(frame *gocv.Mat) (FaceLandmarks, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return FaceLandmarks{}, false, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next.Face, next.Found, nil
	}
	return m.face, m.found, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FaceWithIris returns a full face mesh with both iris centers at the given
// horizontal positions. All other points sit in the middle of the frame.
func FaceWithIris(leftX, rightX float64) FaceLandmarks {
	points := make([]Point3D, NumFaceMeshPoints)
	for i := range points {
		points[i] = Point3D{X: 0.5, Y: 0.5}
	}
	points[LeftIris] = Point3D{X: leftX, Y: 0.42}
	points[RightIris] = Point3D{X: rightX, Y: 0.42}
	return FaceLandmarks{Points: points}
}

// LookingFace returns landmarks of a face looking straight at the camera.
func LookingFace() FaceLandmarks {
	return FaceWithIris(0.46, 0.54)
}

// AwayFace returns landmarks whose iris centers average to x, off the midline.
func AwayFace(x float64) FaceLandmarks {
	return FaceWithIris(x-0.04, x+0.04)
}
