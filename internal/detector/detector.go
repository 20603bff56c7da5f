package detector

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrNotStarted is returned when Detect is called on a detector whose model
// process could not be started.
var ErrNotStarted = errors.New("detector not started")

// Detector defines the interface for face landmark extraction.
type Detector interface {
	// Detect analyzes a frame and returns the landmarks of the first face the
	// model reports. found is false when no face was detected; that is not
	// an error.
	Detect(frame *gocv.Mat) (face FaceLandmarks, found bool, err error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for the face mesh model.
type Config struct {
	// MaxFaces is the maximum number of faces the model tracks (default: 1).
	MaxFaces int

	// MinDetectionConfidence is the minimum detection confidence (0.0-1.0).
	MinDetectionConfidence float64

	// RefineLandmarks enables the iris landmarks. Gaze classification needs it.
	RefineLandmarks bool

	// Script is the path of the face mesh helper. Empty means search the
	// usual locations.
	Script string

	// Python is the interpreter used to run Script. Empty means look for a
	// virtualenv and fall back to python3.
	Python string
}

// DefaultConfig returns the fixed model configuration used by the service.
func DefaultConfig() Config {
	return Config{
		MaxFaces:               1,
		MinDetectionConfidence: 0.5,
		RefineLandmarks:        true,
	}
}
