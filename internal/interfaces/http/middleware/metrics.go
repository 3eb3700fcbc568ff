package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/orrisdesk/internal/infrastructure/metrics"
)

// Metrics records request counts and latency by route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
