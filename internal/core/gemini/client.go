package gemini

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// FallbackReply is returned whenever a completion cannot be produced.
const FallbackReply = "I'm sorry, I couldn't generate a response at this time."

const DefaultModel = "gemini-2.0-flash"

// Completer turns a prompt into text. Implementations never fail: on any
// error they return FallbackReply.
type Completer interface {
	Complete(ctx context.Context, prompt string) string
}

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	models generator
	model  string
	log    *logrus.Logger
	cfg    *genai.GenerateContentConfig
	sleep  func(time.Duration)
}

func New(apiKey, model string, log *logrus.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	if model == "" {
		model = DefaultModel
	}
	tr := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
		ForceAttemptHTTP2: false,
		MaxIdleConns:      100,
		IdleConnTimeout:   90 * time.Second,
	}
	hc := &http.Client{Transport: tr, Timeout: 30 * time.Second}
	reqTimeout := 15 * time.Second
	cl, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
		HTTPOptions: genai.HTTPOptions{
			Timeout: &reqTimeout,
		},
	})
	if err != nil {
		return nil, err
	}
	return newClient(cl.Models, model, log), nil
}

func newClient(g generator, model string, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		models: g,
		model:  model,
		log:    log,
		cfg:    generationConfig(),
		sleep:  time.Sleep,
	}
}

// generationConfig keeps replies short and plain. Safety filters are off:
// users describe anxiety, meltdowns and similar topics that the default
// thresholds block.
func generationConfig() *genai.GenerateContentConfig {
	temp := float32(0.5)
	topP := float32(1)
	topK := float32(32)

	safety := make([]*genai.SafetySetting, 0, 4)
	for _, c := range []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	} {
		safety = append(safety, &genai.SafetySetting{Category: c, Threshold: genai.HarmBlockThresholdBlockNone})
	}

	return &genai.GenerateContentConfig{
		Temperature:      &temp,
		TopP:             &topP,
		TopK:             &topK,
		MaxOutputTokens:  512,
		ResponseMIMEType: "text/plain",
		SafetySettings:   safety,
	}
}

func (g *Client) Close() error { return nil }

// Complete asks the model for a completion of prompt.
func (g *Client) Complete(ctx context.Context, prompt string) string {
	text, err := g.callOnce(ctx, prompt)
	if err != nil {
		g.log.WithError(err).WithField("model", g.model).Error("error generating response")
		return FallbackReply
	}
	return text
}

func (g *Client) callOnce(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for i := 0; i < 3; i++ {
		resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), g.cfg)
		if err != nil {
			lastErr = err
			if retriable(err) && ctx.Err() == nil {
				g.sleep(time.Duration(300*(i+1)) * time.Millisecond)
				continue
			}
			return "", err
		}
		if text := textOf(resp); text != "" {
			return text, nil
		}
		lastErr = errors.New("empty response")
		g.sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}
	return "", lastErr
}

func textOf(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	return resp.Text()
}

func retriable(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "unexpected EOF") ||
		strings.Contains(s, "timeout") ||
		strings.Contains(s, "RST_STREAM") ||
		strings.Contains(s, "connection reset")
}

// Unavailable is used when no API key is configured.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, string) string { return FallbackReply }
