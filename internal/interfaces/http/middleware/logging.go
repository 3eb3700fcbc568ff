package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

const requestIDHeader = "X-Request-ID"

// CustomLogger logs one line per admin API request. Requests without an
// X-Request-ID get a generated one, echoed back in the response.
func CustomLogger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		args := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if claims, ok := AdminClaims(c); ok {
			args = append(args, "operator", claims.Operator)
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Errorw("admin request failed", args...)
		case status >= 400:
			log.Warnw("admin request rejected", args...)
		default:
			log.Debugw("admin request served", args...)
		}
	}
}
