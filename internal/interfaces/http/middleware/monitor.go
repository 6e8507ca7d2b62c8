package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/printstarter/printstarter/internal/infrastructure/monitoring"
)

// Monitor records every completed request on the named route, after the
// handler chain has produced its response. Recording is best-effort inside
// the monitor itself, so this middleware never alters the response.
func Monitor(monitor *monitoring.RequestMonitor, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		rec := monitoring.RequestRecord{
			Route:    route,
			Status:   c.Writer.Status(),
			Identity: ClientIdentity(c),
			Duration: time.Since(start),
		}
		if label, ok := c.Get(ErrorLabelKey); ok {
			if s, isString := label.(string); isString {
				rec.ErrorMessage = s
			}
		}
		if meta, ok := c.Get(ResponseMetaKey); ok {
			if m, isMap := meta.(map[string]interface{}); isMap {
				rec.Meta = m
			}
		}

		monitor.Record(c.Request.Context(), rec)
	}
}
