package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
)

// AccessLog logs one line per request.
func AccessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		startTime := time.Now()
		c.Next()

		logger.Info(path,
			slog.String("method", c.Request.Method),
			slog.String("url", path+"?"+query),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("time-cost", time.Since(startTime)),
			slog.String("ip", c.ClientIP()),
			slog.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
		)
	}
}

// Recovery turns a handler panic into a 500 JSON response.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("recovered from panic",
					slog.String("router", c.Request.URL.Path),
					slog.String("method", c.Request.Method),
					slog.String("panic_value", fmt.Sprintf("%v", r)),
					slog.String("stack", string(debug.Stack())),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
