package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/steveyiyo/jarvis-backend/pkg/types"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, types.ErrorResp{Error: msg})
}

func requestLog(log *logrus.Logger, c *gin.Context) *logrus.Entry {
	return log.WithField(RequestIDKey, c.GetString(RequestIDKey))
}
