package http

import (
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/steveyiyo/jarvis-backend/internal/http/handlers"
	"github.com/steveyiyo/jarvis-backend/pkg/types"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, reusing the caller's when given.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(handlers.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AccessLog logs one line per request.
func AccessLog(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			handlers.RequestIDKey: c.GetString(handlers.RequestIDKey),
			"method":              c.Request.Method,
			"path":                c.Request.URL.Path,
			"status":              c.Writer.Status(),
			"latency":             time.Since(start).String(),
			"client_ip":           c.ClientIP(),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}

// Recovery turns panics into an opaque 500. The detail only goes to the log.
func Recovery(log *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, err any) {
		log.WithFields(logrus.Fields{
			handlers.RequestIDKey: c.GetString(handlers.RequestIDKey),
			"panic":               err,
			"stack":               string(debug.Stack()),
		}).Error("error processing request")
		c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResp{Error: "Internal server error"})
	})
}
