package middleware

import (
	"time"

	"Chat_Community/internal/logging"
	"Chat_Community/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextRequestIDKey = "request_id"
	RequestIDHeader     = "X-Request-ID"
)

// RequestID 沿用上游的 X-Request-ID，没有则生成
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// AccessLog 记录访问日志并上报 HTTP 指标
func AccessLog(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		reg.ObserveHTTP(route, c.Request.Method, c.Writer.Status(), duration)

		logging.WithRequest(c.GetString(ContextRequestIDKey), c.GetString(ContextUserIDKey), route).Infow("HTTP request completed",
			"method", c.Request.Method,
			"status_code", c.Writer.Status(),
			"duration_ms", duration.Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
