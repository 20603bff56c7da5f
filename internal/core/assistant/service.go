package assistant

import (
	"context"
	"time"

	"github.com/steveyiyo/jarvis-backend/internal/core/gemini"
	"github.com/steveyiyo/jarvis-backend/internal/core/markup"
	"github.com/steveyiyo/jarvis-backend/pkg/types"
)

type Service struct {
	LLM gemini.Completer
	Now func() time.Time
}

func NewService(llm gemini.Completer) *Service {
	return &Service{LLM: llm, Now: time.Now}
}

// Reply answers message in the Jarvis persona. It never fails; model errors
// surface as the fallback text.
func (s *Service) Reply(ctx context.Context, userID, message string) types.AssistantResp {
	text := s.LLM.Complete(ctx, gemini.AssistantPrompt(message))
	return types.AssistantResp{
		UserID:    userID,
		Response:  markup.Flatten(text),
		Timestamp: s.Now().UTC().Format(time.RFC3339Nano),
	}
}
