package feedback

import (
	"context"

	"github.com/steveyiyo/jarvis-backend/internal/core/gemini"
	"github.com/steveyiyo/jarvis-backend/internal/core/markup"
)

type Engine struct {
	LLM gemini.Completer
}

func New(llm gemini.Completer) *Engine { return &Engine{LLM: llm} }

// Feedback returns plain-text coaching on a recorded answer.
func (e *Engine) Feedback(ctx context.Context, eyeContact float64, transcript string) string {
	return markup.Flatten(e.LLM.Complete(ctx, gemini.FeedbackPrompt(eyeContact, transcript)))
}
