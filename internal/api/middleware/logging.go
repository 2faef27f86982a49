package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"ec-simulator/internal/logger"
)

// Logger writes request.start and request.complete entries through the structured logger.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := log.WithFields(c.Request.Context(), map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		log.Debug(ctx, "request.start")

		c.Next()

		fields := map[string]any{
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"bytes":       c.Writer.Size(),
		}
		if route := c.FullPath(); route != "" {
			fields["route"] = route
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		ctx = log.WithFields(ctx, fields)

		switch status := c.Writer.Status(); {
		case status >= 500:
			var err error
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			}
			log.Error(ctx, "request.complete", err)
		case status >= 400:
			log.Warn(ctx, "request.complete")
		default:
			log.Info(ctx, "request.complete")
		}
	}
}
