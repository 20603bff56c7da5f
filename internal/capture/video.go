// Package capture provides sequential frame streams decoded with GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNotOpened is returned when a video file cannot be opened for decoding.
var ErrNotOpened = errors.New("video could not be opened")

// FrameSource is a decode-once sequence of frames.
type FrameSource interface {
	// Next returns the next decoded frame. ok is false at end of stream.
	// The caller owns the returned Mat and must close it.
	Next() (frame *gocv.Mat, ok bool)

	// Close releases the underlying stream. It is safe to call more than once.
	Close() error
}

// VideoFile streams frames from a video container on disk.
type VideoFile struct {
	path    string
	capture *gocv.VideoCapture
	mu      sync.Mutex
	done    bool
}

// OpenVideo opens path for sequential decoding.
func OpenVideo(path string) (*VideoFile, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		if vc != nil {
			vc.Close()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNotOpened, path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotOpened, path)
	}
	return &VideoFile{path: path, capture: vc}, nil
}

// Next reads one frame. A failed read or an empty frame ends the stream;
// a corrupt frame in the middle of a file is indistinguishable from the end.
func (v *VideoFile) Next() (*gocv.Mat, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.done || v.capture == nil {
		return nil, false
	}

	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		v.done = true
		return nil, false
	}

	return &mat, true
}

// FrameCount returns the frame count advertised by the container. Many
// formats (webm from browsers in particular) report 0 or an estimate.
func (v *VideoFile) FrameCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.capture == nil {
		return 0
	}
	n := int(v.capture.Get(gocv.VideoCaptureFrameCount))
	if n < 0 {
		return 0
	}
	return n
}

// Close releases the capture handle.
func (v *VideoFile) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.capture == nil {
		return nil
	}

	err := v.capture.Close()
	v.capture = nil
	v.done = true

	return err
}

// SliceSource serves frames that are already decoded. Frames not consumed
// by Next are closed by Close.
type SliceSource struct {
	frames []*gocv.Mat
	closed bool
}

// NewSliceSource takes ownership of frames.
func NewSliceSource(frames []*gocv.Mat) *SliceSource {
	return &SliceSource{frames: frames}
}

// Next returns the next frame. A nil entry ends the stream the same way an
// unreadable frame does for a file.
func (s *SliceSource) Next() (*gocv.Mat, bool) {
	if s.closed || len(s.frames) == 0 {
		return nil, false
	}
	frame := s.frames[0]
	s.frames = s.frames[1:]
	if frame == nil {
		s.drain()
		return nil, false
	}
	return frame, true
}

// Close releases any frames that were never handed out.
func (s *SliceSource) Close() error {
	if s.closed {
		return nil
	}
	s.drain()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *SliceSource) Closed() bool {
	return s.closed
}

func (s *SliceSource) drain() {
	for _, f := range s.frames {
		if f != nil {
			f.Close()
		}
	}
	s.frames = nil
}
