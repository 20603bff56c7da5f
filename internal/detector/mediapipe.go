package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

const scriptName = "face_mesh_service.py"

// MediaPipeDetector implements Detector with a long-lived Python MediaPipe
// Face Mesh process. Frames go out as PNG (BGR, as decoded by OpenCV) and
// the helper converts them to RGB before inference.
//
// The face mesh runs in video mode and tracks the face between calls, so
// Detect calls are serialized with a mutex. The detector is safe for
// concurrent use, but interleaving frames of different videos degrades
// tracking; callers analyzing whole videos should serialize at that level.
type MediaPipeDetector struct {
	config Config
	script string
	python string
	log    *logrus.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	stderr  io.Closer
	started bool
}

// NewMediaPipeDetector creates a detector. The helper process is not started
// until Start or the first Detect call.
func NewMediaPipeDetector(config Config, log *logrus.Logger) (*MediaPipeDetector, error) {
	script := config.Script
	if script == "" {
		script = findFaceMeshScript()
	}
	if script == "" {
		return nil, fmt.Errorf("%s not found", scriptName)
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("face mesh script: %w", err)
	}

	python := config.Python
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
		python: python,
		log:    log,
	}, nil
}

// Start launches the helper process and loads the model.
func (d *MediaPipeDetector) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ensureStarted()
}

// Detect sends one frame to the face mesh and returns the first face found.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) (FaceLandmarks, bool, error) {
	if frame == nil || frame.Empty() {
		return FaceLandmarks{}, false, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return FaceLandmarks{}, false, err
	}

	buf, err := gocv.IMEncode(frameExt, *frame)
	if err != nil {
		return FaceLandmarks{}, false, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	if err := writeFrame(d.stdin, buf.GetBytes()); err != nil {
		d.shutdown()
		return FaceLandmarks{}, false, err
	}

	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		d.shutdown()
		return FaceLandmarks{}, false, fmt.Errorf("read response: %w", err)
	}

	return decodeResponse(line)
}

// Close shuts down the helper process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) args() []string {
	args := []string{
		d.script,
		"--max-faces", strconv.Itoa(d.config.MaxFaces),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinDetectionConfidence, 'f', -1, 64),
	}
	if d.config.RefineLandmarks {
		args = append(args, "--refine-landmarks")
	}
	return args
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	cmd := exec.Command(d.python, d.args()...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Helper diagnostics end up in our log instead of the terminal.
	stderr := d.log.WithField("component", "face_mesh").WriterLevel(logrus.WarnLevel)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		stderr.Close()
		return fmt.Errorf("%w: start face mesh service: %v", ErrNotStarted, err)
	}

	d.cmd = cmd
	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.stderr = stderr
	d.started = true

	d.log.WithFields(logrus.Fields{
		"python":           d.python,
		"script":           d.script,
		"max_faces":        d.config.MaxFaces,
		"min_confidence":   d.config.MinDetectionConfidence,
		"refine_landmarks": d.config.RefineLandmarks,
	}).Info("face mesh service started")

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	if d.stderr != nil {
		d.stderr.Close()
	}

	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil
	d.stderr = nil

	return err
}

// frameExt is lossless so iris positions near the gaze band edges are not
// moved by compression.
const frameExt = ".png"

// writeFrame writes one length-prefixed (4 bytes big-endian) frame.
func writeFrame(w io.Writer, data []byte) error {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := w.Write(length); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

// jsonFace represents the JSON structure from the Python service.
type jsonFace struct {
	Points []Point3D `json:"points"`
}

type jsonResponse struct {
	Faces []jsonFace `json:"faces"`
	Error string     `json:"error,omitempty"`
}

// decodeResponse parses one response line. Only the first face is kept.
func decodeResponse(line []byte) (FaceLandmarks, bool, error) {
	var resp jsonResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return FaceLandmarks{}, false, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return FaceLandmarks{}, false, fmt.Errorf("face mesh service: %s", resp.Error)
	}
	if len(resp.Faces) == 0 {
		return FaceLandmarks{}, false, nil
	}
	return FaceLandmarks{Points: resp.Faces[0].Points}, true, nil
}

func findFaceMeshScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", scriptName),
		filepath.Join("..", "scripts", scriptName),
		filepath.Join("..", "..", "scripts", scriptName),
		filepath.Join(execDir, "scripts", scriptName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment
// next to the working directory or the executable.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}
