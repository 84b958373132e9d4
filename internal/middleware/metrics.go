package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/david16260/gestor-documental/internal/service"
)

// Metrics records latency and status per route. Unmatched paths fall
// back to the raw URL so 404s still show up.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
