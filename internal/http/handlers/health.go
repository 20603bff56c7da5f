package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/steveyiyo/jarvis-backend/pkg/types"
)

type HealthHandler struct {
	start time.Time
}

func NewHealthHandler() *HealthHandler { return &HealthHandler{start: time.Now()} }

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResp{
		Status: "ok",
		Uptime: time.Since(h.start).String(),
	})
}
