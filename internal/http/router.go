package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/steveyiyo/jarvis-backend/internal/config"
	"github.com/steveyiyo/jarvis-backend/internal/core/assistant"
	"github.com/steveyiyo/jarvis-backend/internal/core/feedback"
	"github.com/steveyiyo/jarvis-backend/internal/core/gemini"
	"github.com/steveyiyo/jarvis-backend/internal/http/handlers"
)

// Deps are the long-lived collaborators shared by all requests.
type Deps struct {
	Log      *logrus.Logger
	LLM      gemini.Completer
	Analyzer handlers.VideoAnalyzer
}

func NewRouter(cfg config.Config, d Deps) *gin.Engine {
	r := gin.New()
	maxBytes := cfg.MaxUploadMB << 20
	r.MaxMultipartMemory = 32 << 20
	if maxBytes < r.MaxMultipartMemory {
		r.MaxMultipartMemory = maxBytes
	}

	r.Use(
		RequestID(),
		AccessLog(d.Log),
		Recovery(d.Log),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Content-Type", requestIDHeader},
			ExposeHeaders:   []string{requestIDHeader},
			MaxAge:          12 * time.Hour,
		}),
	)

	ah := handlers.NewAssistantHandler(assistant.NewService(d.LLM), d.Log)
	vh := handlers.NewVideoHandler(d.Analyzer, feedback.New(d.LLM), d.Log, maxBytes)
	hh := handlers.NewHealthHandler()

	api := r.Group("/api")
	api.GET("/health", hh.Health)
	api.POST("/assistant", ah.Reply)
	api.POST("/analyze-video", vh.Analyze)
	return r
}
