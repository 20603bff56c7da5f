package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/steveyiyo/jarvis-backend/internal/config"
	"github.com/steveyiyo/jarvis-backend/internal/core/eyecontact"
	"github.com/steveyiyo/jarvis-backend/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type echoLLM struct{}

func (echoLLM) Complete(context.Context, string) string { return "*fine*" }

type fixedAnalyzer struct {
	result eyecontact.Result
	panics bool
}

func (f fixedAnalyzer) AnalyzeFile(string) (eyecontact.Result, error) {
	if f.panics {
		panic("boom: /tmp/secret/path")
	}
	return f.result, nil
}

func newTestRouter(a fixedAnalyzer) (*gin.Engine, *test.Hook) {
	log, hook := test.NewNullLogger()
	r := NewRouter(config.Config{MaxUploadMB: 8}, Deps{
		Log:      log,
		LLM:      echoLLM{},
		Analyzer: a,
	})
	return r, hook
}

func videoRequest(t *testing.T) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("video", "clip.webm")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("frames"))
	w.WriteField("transcript", "hello there")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-video", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestRouter_Routes(t *testing.T) {
	r, _ := newTestRouter(fixedAnalyzer{result: eyecontact.NewResult(5, 5)})

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
	})

	t.Run("assistant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(`{"user_id":"u","message":"hi"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var resp types.AssistantResp
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Response != " fine " {
			t.Errorf("expected flattened reply, got %q", resp.Response)
		}
	})

	t.Run("analyze video", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, videoRequest(t))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}
		var resp types.AnalyzeVideoResp
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.EyeContact != 100.0 {
			t.Errorf("expected eyeContact 100, got %v", resp.EyeContact)
		}
		if resp.Transcript != "hello there" {
			t.Errorf("expected transcript echoed, got %q", resp.Transcript)
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestRouter_RequestID(t *testing.T) {
	r, _ := newTestRouter(fixedAnalyzer{})

	t.Run("generated when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if rec.Header().Get(requestIDHeader) == "" {
			t.Error("expected a request id header")
		}
	})

	t.Run("propagated when given", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set(requestIDHeader, "trace-123")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if got := rec.Header().Get(requestIDHeader); got != "trace-123" {
			t.Errorf("expected trace-123, got %q", got)
		}
	})
}

func TestRouter_CORS(t *testing.T) {
	r, _ := newTestRouter(fixedAnalyzer{})

	req := httptest.NewRequest(http.MethodOptions, "/api/assistant", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected preflight status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected any origin to be allowed, got %q", got)
	}
}

func TestRouter_PanicIsOpaque(t *testing.T) {
	r, hook := newTestRouter(fixedAnalyzer{panics: true})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, videoRequest(t))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Errorf("response leaked internals: %s", rec.Body.String())
	}
	var resp types.ErrorResp
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != "Internal server error" {
		t.Errorf("expected generic error, got %q", resp.Error)
	}

	logged := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Message == "error processing request" {
			logged = true
		}
	}
	if !logged {
		t.Error("expected the panic to be logged with detail")
	}
}
