package eyecontact

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/steveyiyo/jarvis-backend/internal/capture"
	"github.com/steveyiyo/jarvis-backend/internal/detector"
)

// Result is the aggregate of one analyzed video. Frames without a detected
// face are not part of TotalFrames, so Percentage is the share of
// face-detected frames classified as looking.
type Result struct {
	LookingFrames int     `json:"lookingFrameCount" yaml:"lookingFrameCount"`
	TotalFrames   int     `json:"totalFrameCount" yaml:"totalFrameCount"`
	Percentage    float64 `json:"percentage" yaml:"percentage"`
}

// NewResult computes the percentage rounded to two decimals. Zero face
// frames gives 0.
func NewResult(looking, total int) Result {
	r := Result{LookingFrames: looking, TotalFrames: total}
	if total > 0 {
		r.Percentage = round2(float64(looking) / float64(total) * 100)
	}
	return r
}

// round2 rounds the exact binary value of v to two decimals with ties to
// even, so 3.125 becomes 3.12.
func round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}

// Analyzer runs the detector over every frame of a video and aggregates the
// gaze classification.
type Analyzer struct {
	detector detector.Detector
	band     GazeBand
	log      *logrus.Logger

	// Progress, when set, is called once per decoded frame.
	Progress func()

	// The face mesh tracks state across frames, so one video at a time.
	mu sync.Mutex
}

// NewAnalyzer creates an Analyzer using the default gaze band.
func NewAnalyzer(d detector.Detector, log *logrus.Logger) *Analyzer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Analyzer{detector: d, band: DefaultGazeBand, log: log}
}

// WithBand overrides the gaze band.
func (a *Analyzer) WithBand(b GazeBand) *Analyzer {
	a.band = b
	return a
}

// Analyze consumes src to the end and closes it on every path. End of
// stream is not an error; a detector failure is.
func (a *Analyzer) Analyze(src capture.FrameSource) (res Result, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close frame source: %w", cerr)
		}
	}()

	looking, total, decoded := 0, 0, 0
	for {
		frame, ok := src.Next()
		if !ok {
			break
		}
		decoded++
		if a.Progress != nil {
			a.Progress()
		}

		face, found, derr := a.detector.Detect(frame)
		frame.Close()
		if derr != nil {
			return Result{}, fmt.Errorf("detect frame %d: %w", decoded, derr)
		}
		if !found {
			continue
		}

		total++
		if a.band.Classify(face) {
			looking++
		}
	}

	res = NewResult(looking, total)
	a.log.WithFields(logrus.Fields{
		"decoded_frames": decoded,
		"face_frames":    total,
		"looking_frames": looking,
		"eye_contact":    res.Percentage,
	}).Debug("eye contact analyzed")

	return res, nil
}

// AnalyzeFile analyzes the video at path. A file that cannot be opened for
// decoding has no decodable frames and yields the zero Result.
func (a *Analyzer) AnalyzeFile(path string) (Result, error) {
	src, err := capture.OpenVideo(path)
	if err != nil {
		if errors.Is(err, capture.ErrNotOpened) {
			a.log.WithError(err).Warn("video has no decodable frames")
			return NewResult(0, 0), nil
		}
		return Result{}, err
	}
	return a.Analyze(src)
}
