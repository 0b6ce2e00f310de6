package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"drivon-backend/internal/logging"
)

// RequestLoggingMiddleware tags every request with an ID and logs its outcome.
func RequestLoggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		logger.Infof("Request: %s %s, Status: %d, Latency: %v, request_id=%s", method, path, status, latency, requestID)
	}
}

// NoStoreMiddleware forbids caching of every response the server produces.
func NoStoreMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
