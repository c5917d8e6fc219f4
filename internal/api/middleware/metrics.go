package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/freelance-backend/internal/metrics"
)

// MetricsMiddleware records request counts and latency per route template.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		metrics.InFlightInc()
		defer metrics.InFlightDec()

		c.Next()

		metrics.RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
