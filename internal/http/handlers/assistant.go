package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/steveyiyo/jarvis-backend/internal/core/assistant"
	"github.com/steveyiyo/jarvis-backend/pkg/types"
)

type AssistantHandler struct {
	Svc *assistant.Service
	Log *logrus.Logger
}

func NewAssistantHandler(svc *assistant.Service, log *logrus.Logger) *AssistantHandler {
	return &AssistantHandler{Svc: svc, Log: log}
}

func (h *AssistantHandler) Reply(c *gin.Context) {
	log := requestLog(h.Log, c)

	if c.ContentType() != gin.MIMEJSON {
		log.Warn("assistant request is not JSON")
		fail(c, http.StatusBadRequest, "Request must be JSON")
		return
	}

	var req types.AssistantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			log.Warn("assistant request has no body")
			fail(c, http.StatusBadRequest, "No data received")
			return
		}
		log.WithError(err).Warn("assistant request body is not valid JSON")
		fail(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UserID == nil || req.Message == nil {
		log.Warn("missing required fields in request")
		fail(c, http.StatusBadRequest, "Missing required fields: user_id and message")
		return
	}

	// user_id is echoed as sent, trimming only decides emptiness.
	message := strings.TrimSpace(*req.Message)
	if strings.TrimSpace(*req.UserID) == "" || message == "" {
		log.Warn("empty user_id or message")
		fail(c, http.StatusBadRequest, "user_id and message cannot be empty")
		return
	}

	c.JSON(http.StatusOK, h.Svc.Reply(c.Request.Context(), *req.UserID, message))
}
