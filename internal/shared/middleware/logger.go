package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger ghi một dòng zerolog cho mỗi request.
// Level theo status: 5xx error, 4xx warn, còn lại info; health check chỉ ở debug.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		event := requestEvent(status, route)
		event.
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency_ms", time.Since(start))

		if subject := c.GetString(ContextSubject); subject != "" {
			event.Str("subject", subject)
		}
		if len(c.Errors) > 0 {
			event.Str("errors", c.Errors.String())
		}
		event.Msg("HTTP Request")
	}
}

func requestEvent(status int, route string) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return log.Error()
	case status >= http.StatusBadRequest:
		return log.Warn()
	case strings.HasSuffix(route, "/health"):
		return log.Debug()
	}
	return log.Info()
}
