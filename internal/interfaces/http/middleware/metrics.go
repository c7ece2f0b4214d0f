package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver records finished requests
type RequestObserver interface {
	ObserveRequest(handler, status string, d time.Duration)
}

// Metrics records the route template, status and latency of every request
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveRequest(route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
