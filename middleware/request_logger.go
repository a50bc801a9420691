// Package middleware file: middleware/request_logger.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go-live-polls/logger"
)

// RequestLogger writes one line per request through the application logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		line := "[RequestLogger] %s %s -> %d (%v)"
		switch {
		case status >= 500:
			logger.Error.Printf(line, c.Request.Method, c.Request.URL.Path, status, time.Since(start))
		case status >= 400:
			logger.Warn.Printf(line, c.Request.Method, c.Request.URL.Path, status, time.Since(start))
		default:
			logger.Info.Printf(line, c.Request.Method, c.Request.URL.Path, status, time.Since(start))
		}
	}
}
