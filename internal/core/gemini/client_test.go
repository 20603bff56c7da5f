package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"google.golang.org/genai"
)

type fakeModels struct {
	replies []*genai.GenerateContentResponse
	errs    []error
	calls   int
	prompts []string
	cfg     *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	f.cfg = cfg
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return &genai.GenerateContentResponse{}, nil
}

func reply(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func newTestClient(f *fakeModels) *Client {
	log, _ := test.NewNullLogger()
	c := newClient(f, DefaultModel, log)
	c.sleep = func(time.Duration) {}
	return c
}

func TestClient_Complete(t *testing.T) {
	t.Run("returns model text", func(t *testing.T) {
		f := &fakeModels{replies: []*genai.GenerateContentResponse{reply("Take three slow breaths.")}}
		c := newTestClient(f)

		got := c.Complete(context.Background(), "hello")
		if got != "Take three slow breaths." {
			t.Errorf("unexpected reply %q", got)
		}
		if f.calls != 1 {
			t.Errorf("expected 1 call, got %d", f.calls)
		}
		if len(f.prompts) != 1 || f.prompts[0] != "hello" {
			t.Errorf("expected prompt to be forwarded, got %v", f.prompts)
		}
	})

	t.Run("retries transient errors", func(t *testing.T) {
		f := &fakeModels{
			errs:    []error{errors.New("read tcp: connection reset by peer"), nil},
			replies: []*genai.GenerateContentResponse{nil, reply("ok")},
		}
		c := newTestClient(f)

		if got := c.Complete(context.Background(), "hi"); got != "ok" {
			t.Errorf("expected retry to succeed, got %q", got)
		}
		if f.calls != 2 {
			t.Errorf("expected 2 calls, got %d", f.calls)
		}
	})

	t.Run("permanent error falls back", func(t *testing.T) {
		f := &fakeModels{errs: []error{errors.New("Error 400, Message: API key not valid")}}
		log, hook := test.NewNullLogger()
		c := newClient(f, DefaultModel, log)
		c.sleep = func(time.Duration) {}

		if got := c.Complete(context.Background(), "hi"); got != FallbackReply {
			t.Errorf("expected fallback, got %q", got)
		}
		if f.calls != 1 {
			t.Errorf("expected no retry on permanent error, got %d calls", f.calls)
		}
		if len(hook.Entries) == 0 {
			t.Error("expected the failure to be logged")
		}
	})

	t.Run("empty responses exhaust attempts", func(t *testing.T) {
		f := &fakeModels{}
		c := newTestClient(f)

		if got := c.Complete(context.Background(), "hi"); got != FallbackReply {
			t.Errorf("expected fallback, got %q", got)
		}
		if f.calls != 3 {
			t.Errorf("expected 3 attempts, got %d", f.calls)
		}
	})

	t.Run("sends generation settings", func(t *testing.T) {
		f := &fakeModels{replies: []*genai.GenerateContentResponse{reply("x")}}
		c := newTestClient(f)
		c.Complete(context.Background(), "hi")

		if f.cfg == nil {
			t.Fatal("expected a generation config")
		}
		if f.cfg.MaxOutputTokens != 512 {
			t.Errorf("expected 512 max tokens, got %d", f.cfg.MaxOutputTokens)
		}
		if f.cfg.Temperature == nil || *f.cfg.Temperature != 0.5 {
			t.Error("expected temperature 0.5")
		}
		if f.cfg.TopK == nil || *f.cfg.TopK != 32 {
			t.Error("expected top_k 32")
		}
		if len(f.cfg.SafetySettings) != 4 {
			t.Errorf("expected 4 safety settings, got %d", len(f.cfg.SafetySettings))
		}
		for _, s := range f.cfg.SafetySettings {
			if s.Threshold != genai.HarmBlockThresholdBlockNone {
				t.Errorf("expected BLOCK_NONE for %s, got %s", s.Category, s.Threshold)
			}
		}
	})
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New("", DefaultModel, nil); err == nil {
		t.Error("expected error for empty api key")
	}
}

func TestUnavailable(t *testing.T) {
	var c Completer = Unavailable{}
	if got := c.Complete(context.Background(), "anything"); got != FallbackReply {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestRetriable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("unexpected EOF"), true},
		{errors.New("context deadline exceeded (Client.Timeout exceeded while awaiting headers): timeout"), true},
		{errors.New("stream error: RST_STREAM"), true},
		{errors.New("permission denied"), false},
	}
	for _, tt := range tests {
		if got := retriable(tt.err); got != tt.want {
			t.Errorf("retriable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestPrompts(t *testing.T) {
	t.Run("assistant prompt embeds message", func(t *testing.T) {
		p := AssistantPrompt("I feel overwhelmed")
		if !strings.Contains(p, "Current user message: I feel overwhelmed") {
			t.Errorf("message missing from prompt: %q", p)
		}
		if !strings.HasPrefix(p, "You are Jarvis") {
			t.Errorf("expected persona first, got %q", p)
		}
	})

	t.Run("feedback prompt embeds percentage and transcript", func(t *testing.T) {
		p := FeedbackPrompt(66.67, "hello everyone")
		if !strings.Contains(p, "Eye Contact: 66.67%") {
			t.Errorf("percentage missing from prompt: %q", p)
		}
		if !strings.Contains(p, "Transcript: hello everyone") {
			t.Errorf("transcript missing from prompt: %q", p)
		}
	})

	t.Run("whole percentages keep one decimal", func(t *testing.T) {
		for in, want := range map[float64]string{
			0:     "Eye Contact: 0.0%",
			100:   "Eye Contact: 100.0%",
			50:    "Eye Contact: 50.0%",
			15.62: "Eye Contact: 15.62%",
			12.5:  "Eye Contact: 12.5%",
		} {
			if p := FeedbackPrompt(in, ""); !strings.Contains(p, want) {
				t.Errorf("FeedbackPrompt(%v): expected %q in %q", in, want, p)
			}
		}
	})
}
