package httpmiddleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CHGL17/AsistenciasREST/internal/metrics"
)

// Metrics records request duration per method, route template and status.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
