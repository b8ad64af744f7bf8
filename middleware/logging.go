package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Trace headers honored on incoming requests, in priority order.
const (
	TraceParentHeader = "traceparent"
	TraceIDHeader     = "X-Trace-ID"
)

// GetTraceID resolves the trace id for a request: the trace-id field of a W3C
// traceparent header wins, then a bare X-Trace-ID, then a freshly generated id.
func GetTraceID(c *gin.Context) string {
	if tp := c.GetHeader(TraceParentHeader); tp != "" {
		// version-traceid-parentid-flags
		if parts := strings.Split(tp, "-"); len(parts) >= 2 && parts[1] != "" {
			return parts[1]
		}
	}
	if id := c.GetHeader(TraceIDHeader); id != "" {
		return id
	}
	return newTraceID()
}

func newTraceID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// LoggingMiddleware binds a trace-scoped zerolog sub-logger to each request
// context, echoes the trace id back in the response headers, and emits one
// access log line per request. Downstream layers reach the sub-logger through
// zerolog.Ctx on the request context.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		traceID := GetTraceID(c)
		c.Set("trace_id", traceID)
		c.Header(TraceIDHeader, traceID)

		logger := log.With().Str("trace_id", traceID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= 400 {
			event = logger.Error()
		}
		event.
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Msg("HTTP request")
	}
}
