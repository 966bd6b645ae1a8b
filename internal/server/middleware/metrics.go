package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/taskd/internal/observability"
)

// Metrics returns a Gin middleware that records per-request counters and
// latency histograms on the given instruments. Routes are recorded by their
// template (e.g. /api/task/:id), not the raw path, to keep cardinality bounded.
func Metrics(m *observability.RequestMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		m.RecordStart(ctx)
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordEnd(ctx, c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
