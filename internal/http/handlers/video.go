package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/steveyiyo/jarvis-backend/internal/core/eyecontact"
	"github.com/steveyiyo/jarvis-backend/internal/core/feedback"
	"github.com/steveyiyo/jarvis-backend/pkg/types"
)

// VideoAnalyzer estimates eye contact for a video on disk.
type VideoAnalyzer interface {
	AnalyzeFile(path string) (eyecontact.Result, error)
}

type VideoHandler struct {
	Analyzer VideoAnalyzer
	Feedback *feedback.Engine
	Log      *logrus.Logger
	// TempDir holds uploads while they are analyzed. Empty means os.TempDir().
	TempDir string
	// MaxBytes caps the request body. Zero means no cap.
	MaxBytes int64
}

func NewVideoHandler(a VideoAnalyzer, fb *feedback.Engine, log *logrus.Logger, maxBytes int64) *VideoHandler {
	return &VideoHandler{Analyzer: a, Feedback: fb, Log: log, MaxBytes: maxBytes}
}

var safeExt = regexp.MustCompile(`^\.[A-Za-z0-9]{1,8}$`)

func (h *VideoHandler) Analyze(c *gin.Context) {
	log := requestLog(h.Log, c)

	if h.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes)
	}

	file, err := c.FormFile("video")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.WithField("limit", tooLarge.Limit).Warn("video upload too large")
			fail(c, http.StatusRequestEntityTooLarge, "Video file is too large")
			return
		}
		fail(c, http.StatusBadRequest, "Video file is required")
		return
	}
	transcript := c.PostForm("transcript")

	path := h.tempPath(file)
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).WithField("path", path).Error("remove temporary video")
		}
	}()

	if err := c.SaveUploadedFile(file, path); err != nil {
		log.WithError(err).Error("save uploaded video")
		fail(c, http.StatusInternalServerError, "Analysis failed")
		return
	}

	res, err := h.Analyzer.AnalyzeFile(path)
	if err != nil {
		log.WithError(err).Error("video analysis error")
		fail(c, http.StatusInternalServerError, "Analysis failed")
		return
	}

	log.WithFields(logrus.Fields{
		"size":           file.Size,
		"face_frames":    res.TotalFrames,
		"looking_frames": res.LookingFrames,
		"eye_contact":    res.Percentage,
	}).Info("video analyzed")

	c.JSON(http.StatusOK, types.AnalyzeVideoResp{
		EyeContact: res.Percentage,
		Transcript: transcript,
		Feedback:   h.Feedback.Feedback(c.Request.Context(), res.Percentage, transcript),
	})
}

// tempPath names a request-scoped file, keeping the upload's extension so
// the decoder can pick the right demuxer. Browser recordings default to webm.
func (h *VideoHandler) tempPath(file *multipart.FileHeader) string {
	dir := h.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	ext := filepath.Ext(file.Filename)
	if !safeExt.MatchString(ext) {
		ext = ".webm"
	}
	return filepath.Join(dir, "upload-"+uuid.NewString()+ext)
}
