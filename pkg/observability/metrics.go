package observability

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrometheusHandler adapts the registry scrape handler to a gin route.
func PrometheusHandler(scrape http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if scrape == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics not initialized"})
			return
		}
		scrape.ServeHTTP(c.Writer, c.Request)
	}
}
